package link

import "strings"

// Muscle-group roles as annotated on an exercise.
const (
	RolePrimary   = "Primary"
	RoleSecondary = "Secondary"
)

// Exercise type tag values recognized by the link rules.
const (
	TagWorkout  = "Workout"
	TagWarmup   = "Warmup"
	TagCooldown = "Cooldown"
)

// TypeTag is a single exercise-type annotation (e.g. "Workout").
type TypeTag struct {
	Value string `json:"value"`
}

// MuscleGroupAssignment pairs a muscle group with the role it plays in an
// exercise.
type MuscleGroupAssignment struct {
	MuscleGroup string `json:"muscleGroup"`
	Role        string `json:"role"`
}

// Exercise is the read-only catalog record this subsystem consumes. It is
// supplied by the external exercise catalog; only the type tags and muscle
// annotations matter to the link rules.
type Exercise struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Types        []TypeTag               `json:"exerciseTypes"`
	MuscleGroups []MuscleGroupAssignment `json:"muscleGroups"`
}

// HasTag reports whether the exercise carries the given type tag,
// case-insensitively.
func (e *Exercise) HasTag(tag string) bool {
	if e == nil {
		return false
	}
	for _, t := range e.Types {
		if strings.EqualFold(t.Value, tag) {
			return true
		}
	}
	return false
}

// TagSet returns the exercise's type tags lowercased as a set. Empty tag
// values are dropped.
func (e *Exercise) TagSet() map[string]struct{} {
	set := make(map[string]struct{})
	if e == nil {
		return set
	}
	for _, t := range e.Types {
		v := strings.ToLower(strings.TrimSpace(t.Value))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// MuscleSet returns the lowercased muscle groups annotated with the given
// role. Empty muscle-group values are dropped.
func (e *Exercise) MuscleSet(role string) map[string]struct{} {
	set := make(map[string]struct{})
	if e == nil {
		return set
	}
	for _, mg := range e.MuscleGroups {
		if !strings.EqualFold(mg.Role, role) {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(mg.MuscleGroup))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
