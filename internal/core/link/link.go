package link

import "time"

// ExerciseLink represents a directed relationship from a source exercise to a
// target exercise.
// PRINCIPLES:
// - KISS: Simple struct, no complex hierarchies
// - SRP: Only responsible for edge data, not graph-level invariants
type ExerciseLink struct {
	ID               string    `json:"id"`
	SourceExerciseID string    `json:"sourceExerciseId"`
	TargetExerciseID string    `json:"targetExerciseId"`
	TargetName       string    `json:"targetName,omitempty"`
	Type             Type      `json:"linkType"`
	DisplayOrder     int       `json:"displayOrder"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Validate ensures edge integrity. Graph-level invariants (cycles, caps,
// duplicates) are enforced by the validator, not here.
func (l *ExerciseLink) Validate() error {
	if l.SourceExerciseID == "" {
		return ErrInvalidSource
	}
	if l.TargetExerciseID == "" {
		return ErrInvalidTarget
	}
	if l.SourceExerciseID == l.TargetExerciseID {
		return ErrSelfLoop
	}
	if !l.Type.Valid() {
		return ErrInvalidLinkType
	}
	if l.DisplayOrder < 0 {
		return ErrNegativeOrder
	}
	return nil
}

// Clone returns a copy of the link. State holders hand out clones so callers
// cannot mutate the session view behind its back.
func (l *ExerciseLink) Clone() *ExerciseLink {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
