package exerciselinks

import (
	"context"

	snapmem "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/snapshot/memory"
	storemem "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/store/memory"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/services"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/usecases"
	corelink "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// Re-export core link types for convenience
type Exercise = corelink.Exercise
type ExerciseLink = corelink.ExerciseLink
type LinkType = corelink.Type
type TypeTag = corelink.TypeTag
type MuscleGroupAssignment = corelink.MuscleGroupAssignment

const (
	Warmup      = corelink.TypeWarmup
	Cooldown    = corelink.TypeCooldown
	Alternative = corelink.TypeAlternative
)

// Session is a simple façade to manage exercise links without importing
// internal packages directly. The default session uses in-memory components
// and is suitable for local usage and tests.
type Session struct {
	store     *storemem.InMemoryStore
	state     *services.LinkStateService
	validator *usecases.LinkValidator
	suggester *services.SuggestionService
}

// NewSession constructs a default session with in-memory components.
func NewSession() *Session {
	store := storemem.NewInMemoryStore()
	suggester := services.NewSuggestionService(store)
	store.SetSuggester(func(ctx context.Context, exerciseID string, exclude map[string]bool, count int) ([]*corelink.ExerciseLink, error) {
		suggestions, err := suggester.SuggestAlternatives(ctx, exerciseID, exclude, count)
		if err != nil {
			return nil, err
		}
		links := make([]*corelink.ExerciseLink, 0, len(suggestions))
		for i, sug := range suggestions {
			links = append(links, &corelink.ExerciseLink{
				ID:               "suggested-" + sug.Exercise.ID,
				SourceExerciseID: exerciseID,
				TargetExerciseID: sug.Exercise.ID,
				TargetName:       sug.Exercise.Name,
				Type:             corelink.TypeAlternative,
				DisplayOrder:     i,
				IsActive:         false,
			})
		}
		return links, nil
	})

	return &Session{
		store:     store,
		state:     services.NewLinkStateService(store, services.WithSnapshotSaver(snapmem.NewSaver())),
		validator: usecases.NewLinkValidator(store),
		suggester: suggester,
	}
}

// AddExercises registers exercises in the session catalog. Links can only be
// created between registered exercises.
func (s *Session) AddExercises(exercises ...*Exercise) {
	s.store.SeedExercises(exercises...)
}

// State returns the link state manager bound to the session store.
func (s *Session) State() *services.LinkStateService {
	return s.state
}

// Store exposes the underlying link store for direct queries.
func (s *Session) Store() usecases.LinkStore {
	return s.store
}

// Open selects an exercise and loads its links.
func (s *Session) Open(ctx context.Context, exerciseID, exerciseName string) error {
	return s.state.Initialize(ctx, exerciseID, exerciseName)
}

// Link validates and creates a link from the currently open exercise.
// Validation failures are returned before any store traffic happens.
func (s *Session) Link(ctx context.Context, targetID string, linkType LinkType) error {
	sourceID := s.state.CurrentExerciseID()
	if sourceID == "" {
		return dto.ErrNoExerciseSelected
	}

	source, err := s.store.GetExercise(ctx, sourceID)
	if err != nil {
		return err
	}

	existing := make([]*corelink.ExerciseLink, 0)
	existing = append(existing, s.state.WarmupLinks()...)
	existing = append(existing, s.state.CooldownLinks()...)
	existing = append(existing, s.state.AlternativeLinks()...)

	if result := s.validator.ValidateCreateLink(ctx, source, targetID, linkType, existing); !result.Valid {
		return &dto.StoreError{Kind: dto.StoreErrInvalid, Message: result.Message}
	}

	displayOrder := 0
	switch linkType {
	case corelink.TypeWarmup:
		displayOrder = s.state.WarmupLinkCount() + 1
	case corelink.TypeCooldown:
		displayOrder = s.state.CooldownLinkCount() + 1
	}

	return s.state.CreateLink(ctx, dto.CreateExerciseLinkRequest{
		TargetExerciseID: targetID,
		LinkType:         string(linkType),
		DisplayOrder:     displayOrder,
	})
}

// Unlink removes a link by ID.
func (s *Session) Unlink(ctx context.Context, linkID string) error {
	return s.state.DeleteLink(ctx, linkID)
}

// Reorder applies new display orders to the given sequenced link type.
func (s *Session) Reorder(ctx context.Context, linkType LinkType, orders map[string]int) error {
	return s.state.ReorderLinks(ctx, linkType, orders)
}

// Suggest ranks alternative candidates for the currently open exercise by
// muscle-group overlap.
func (s *Session) Suggest(ctx context.Context, count int) ([]services.Suggestion, error) {
	sourceID := s.state.CurrentExerciseID()
	if sourceID == "" {
		return nil, dto.ErrNoExerciseSelected
	}

	exclude := make(map[string]bool)
	for _, l := range s.state.AlternativeLinks() {
		exclude[l.TargetExerciseID] = true
	}
	return s.suggester.SuggestAlternatives(ctx, sourceID, exclude, count)
}
