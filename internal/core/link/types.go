// Package link provides the core exercise-link domain entities
// following Clean Architecture principles with zero external dependencies.
package link

import "strings"

// Type represents the kind of relationship an exercise link expresses.
type Type string

const (
	// TypeWarmup marks the target as a warmup for the source exercise.
	TypeWarmup Type = "Warmup"
	// TypeCooldown marks the target as a cooldown for the source exercise.
	TypeCooldown Type = "Cooldown"
	// TypeAlternative marks the target as an alternative to the source exercise.
	TypeAlternative Type = "Alternative"
)

// MaxLinksPerType is the cap on active Warmup or Cooldown links that may
// originate from a single source exercise. Alternative links are uncapped.
const MaxLinksPerType = 10

// ParseType converts a string into a Type, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "warmup":
		return TypeWarmup, nil
	case "cooldown":
		return TypeCooldown, nil
	case "alternative":
		return TypeAlternative, nil
	default:
		return "", ErrInvalidLinkType
	}
}

// IsSequenced reports whether links of this type carry a meaningful display
// order. Alternative links are unordered and symmetric.
func (t Type) IsSequenced() bool {
	return t == TypeWarmup || t == TypeCooldown
}

// IsCapped reports whether the per-source link cap applies to this type.
func (t Type) IsCapped() bool {
	return t.IsSequenced()
}

// Valid reports whether t is one of the known link types.
func (t Type) Valid() bool {
	return t == TypeWarmup || t == TypeCooldown || t == TypeAlternative
}

func (t Type) String() string {
	return string(t)
}
