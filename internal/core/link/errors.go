// Package link defines domain-specific errors
package link

import "errors"

// Domain errors - defined once, used everywhere
var (
	// Link errors
	ErrNilLink            = errors.New("link cannot be nil")
	ErrInvalidLinkID      = errors.New("invalid link ID")
	ErrInvalidLinkType    = errors.New("invalid link type")
	ErrInvalidSource      = errors.New("invalid source exercise ID")
	ErrInvalidTarget      = errors.New("invalid target exercise ID")
	ErrSelfLoop           = errors.New("an exercise cannot be linked to itself")
	ErrDuplicateLink      = errors.New("duplicate active link")
	ErrLinkNotFound       = errors.New("exercise link not found")
	ErrNegativeOrder      = errors.New("display order cannot be negative")
	ErrMaxLinksReached    = errors.New("maximum number of links reached")
	ErrCyclicLinks        = errors.New("link set contains a cycle")

	// Exercise errors
	ErrNilExercise        = errors.New("exercise cannot be nil")
	ErrInvalidExerciseID  = errors.New("invalid exercise ID")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrMissingTypes       = errors.New("exercise has no type tags")
)
