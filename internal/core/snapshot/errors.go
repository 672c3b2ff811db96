// Package snapshot defines domain-specific errors
package snapshot

import "errors"

// Domain errors - defined once, used everywhere
var (
	// Snapshot validation errors
	ErrInvalidSnapshotID = errors.New("invalid snapshot ID")
	ErrInvalidExerciseID = errors.New("invalid exercise ID")
	ErrNilLinks          = errors.New("snapshot links cannot be nil")
	ErrSnapshotNotFound  = errors.New("snapshot not found")

	// Filter validation errors
	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidOffset    = errors.New("offset cannot be negative")
	ErrInvalidTimeRange = errors.New("invalid time range: since is after before")

	// Persistence errors
	ErrSaveFailed   = errors.New("failed to save snapshot")
	ErrLoadFailed   = errors.New("failed to load snapshot")
	ErrDeleteFailed = errors.New("failed to delete snapshot")
)
