package usecases

import (
	"context"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// LinkStore defines the edge-level contract of the external link store. All
// five operations are atomic and individually consistent; callers reconcile
// multi-call sequences by reloading, not by relying on server transactions.
// PRINCIPLES:
// - SRP: Only responsible for link persistence
// - DIP: Used for dependency injection
type LinkStore interface {
	// CreateLink creates a new active link from the given exercise.
	CreateLink(ctx context.Context, exerciseID string, req dto.CreateExerciseLinkRequest) (*link.ExerciseLink, error)

	// GetLinks returns the authoritative link snapshot for an exercise.
	GetLinks(ctx context.Context, exerciseID string, query dto.LinkQuery) (*dto.ExerciseLinksResponse, error)

	// GetSuggestedLinks returns up to count suggested alternative links.
	GetSuggestedLinks(ctx context.Context, exerciseID string, count int) ([]*link.ExerciseLink, error)

	// UpdateLink rewrites a link's display order and active flag.
	UpdateLink(ctx context.Context, exerciseID, linkID string, req dto.UpdateExerciseLinkRequest) (*link.ExerciseLink, error)

	// DeleteLink removes a link.
	DeleteLink(ctx context.Context, exerciseID, linkID string) error
}

// ExerciseCatalog provides read-only access to the external exercise catalog.
type ExerciseCatalog interface {
	// GetExercise returns a single catalog record.
	GetExercise(ctx context.Context, exerciseID string) (*link.Exercise, error)

	// ListExercises returns all catalog records.
	ListExercises(ctx context.Context) ([]*link.Exercise, error)
}
