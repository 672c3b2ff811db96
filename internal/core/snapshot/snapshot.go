// Package snapshot provides the core session-snapshot domain entities and
// interfaces following Clean Architecture principles with zero external
// dependencies.
package snapshot

import (
	"time"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// Snapshot represents a saved view of one exercise's link session
// PRINCIPLES:
// - KISS: Simple struct with clear fields
// - SRP: Only responsible for snapshot data structure
type Snapshot struct {
	ID           string              `json:"id"`
	ExerciseID   string              `json:"exercise_id"`
	ExerciseName string              `json:"exercise_name"`
	Links        []link.ExerciseLink `json:"links"`
	Metadata     Metadata            `json:"metadata"`
	TakenAt      time.Time           `json:"taken_at"`
	Version      string              `json:"version"`
}

// Metadata contains additional information about a snapshot
type Metadata struct {
	Source    string   `json:"source"`
	CreatedBy string   `json:"created_by,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Validate ensures snapshot integrity
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return ErrInvalidSnapshotID
	}
	if s.ExerciseID == "" {
		return ErrInvalidExerciseID
	}
	if s.Links == nil {
		return ErrNilLinks
	}
	return nil
}
