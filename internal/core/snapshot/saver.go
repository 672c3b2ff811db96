// Package snapshot provides snapshot persistence interfaces
package snapshot

import (
	"context"
	"time"
)

// Saver interface for snapshot persistence (DIP - Dependency Inversion)
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - DIP: Core domain depends on interface, not implementations
type Saver interface {
	// Save persists a snapshot
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves a snapshot by ID
	Load(ctx context.Context, id string) (*Snapshot, error)

	// LoadLatest retrieves the most recent snapshot for an exercise
	LoadLatest(ctx context.Context, exerciseID string) (*Snapshot, error)

	// List returns snapshots matching the filter
	List(ctx context.Context, filter Filter) ([]*Snapshot, error)

	// Delete removes a snapshot by ID
	Delete(ctx context.Context, id string) error
}

// Filter for snapshot queries
type Filter struct {
	ExerciseID string     `json:"exercise_id,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
	Since      *time.Time `json:"since,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
}

// Validate ensures filter parameters are valid
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	if f.Since != nil && f.Before != nil && f.Since.After(*f.Before) {
		return ErrInvalidTimeRange
	}
	return nil
}
