// Package adapters provides an in-memory implementation of the link store,
// used as the reference store in tests, demos and the embedded facade.
package adapters

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// SuggestFunc computes suggested links for an exercise. The exclude set
// carries the IDs of already-linked targets.
type SuggestFunc func(ctx context.Context, exerciseID string, exclude map[string]bool, count int) ([]*link.ExerciseLink, error)

// InMemoryStore implements the link store and the exercise catalog with
// thread-safe map storage. It mirrors the external API's own boundary
// checks: unknown endpoints, self-loops and active duplicates are rejected
// at the store even when a client skips its pre-flight validation.
// PRINCIPLES:
// - KISS: Simple map-based storage
// - SRP: Only responsible for link and catalog persistence
// - Thread-safe
type InMemoryStore struct {
	mu        sync.RWMutex
	exercises map[string]*link.Exercise
	links     map[string][]*link.ExerciseLink

	suggestions map[string][]*link.ExerciseLink
	suggest     SuggestFunc
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		exercises:   make(map[string]*link.Exercise),
		links:       make(map[string][]*link.ExerciseLink),
		suggestions: make(map[string][]*link.ExerciseLink),
	}
}

// SeedExercises registers catalog exercises. Links may only reference
// registered exercises.
func (s *InMemoryStore) SeedExercises(exercises ...*link.Exercise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range exercises {
		if ex != nil && ex.ID != "" {
			s.exercises[ex.ID] = ex
		}
	}
}

// SeedSuggestions registers fixture suggestions returned when no suggester
// function is installed.
func (s *InMemoryStore) SeedSuggestions(exerciseID string, links ...*link.ExerciseLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[exerciseID] = append(s.suggestions[exerciseID], links...)
}

// SetSuggester installs a suggestion computer, replacing fixture lookup.
func (s *InMemoryStore) SetSuggester(fn SuggestFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggest = fn
}

// CreateLink stores a new active link after boundary checks.
func (s *InMemoryStore) CreateLink(_ context.Context, exerciseID string, req dto.CreateExerciseLinkRequest) (*link.ExerciseLink, error) {
	linkType, err := link.ParseType(req.LinkType)
	if err != nil {
		return nil, dto.NewStoreError(dto.StoreErrInvalid, fmt.Sprintf("unknown link type %q", req.LinkType), err)
	}
	if exerciseID == "" || req.TargetExerciseID == "" {
		return nil, dto.NewStoreError(dto.StoreErrInvalid, "missing exercise identifier", link.ErrInvalidSource)
	}
	if strings.EqualFold(exerciseID, req.TargetExerciseID) {
		return nil, dto.NewStoreError(dto.StoreErrInvalid, "an exercise cannot link to itself", link.ErrSelfLoop)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exercises[exerciseID]; !ok {
		return nil, link.ErrExerciseNotFound
	}
	if _, ok := s.exercises[req.TargetExerciseID]; !ok {
		return nil, link.ErrExerciseNotFound
	}
	for _, l := range s.links[exerciseID] {
		if l.IsActive && l.Type == linkType && l.TargetExerciseID == req.TargetExerciseID {
			return nil, dto.NewStoreError(dto.StoreErrInvalid, "link already exists", link.ErrDuplicateLink)
		}
	}

	now := time.Now().UTC()
	created := &link.ExerciseLink{
		ID:               uuid.NewString(),
		SourceExerciseID: exerciseID,
		TargetExerciseID: req.TargetExerciseID,
		Type:             linkType,
		DisplayOrder:     req.DisplayOrder,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.links[exerciseID] = append(s.links[exerciseID], created)
	return created.Clone(), nil
}

// GetLinks returns the link snapshot for an exercise, optionally filtered by
// type. IncludeDetails resolves the exercise display name.
func (s *InMemoryStore) GetLinks(_ context.Context, exerciseID string, query dto.LinkQuery) (*dto.ExerciseLinksResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, ok := s.exercises[exerciseID]
	if !ok {
		return nil, link.ErrExerciseNotFound
	}

	var out []*link.ExerciseLink
	for _, l := range s.links[exerciseID] {
		if query.Type != nil && l.Type != *query.Type {
			continue
		}
		c := l.Clone()
		if query.IncludeDetails {
			if target, ok := s.exercises[c.TargetExerciseID]; ok {
				c.TargetName = target.Name
			}
		}
		out = append(out, c)
	}

	resp := &dto.ExerciseLinksResponse{
		ExerciseID: exerciseID,
		Links:      out,
		TotalCount: len(out),
	}
	if query.IncludeDetails {
		resp.ExerciseName = ex.Name
	}
	return resp, nil
}

// GetSuggestedLinks returns computed or fixture suggestions.
func (s *InMemoryStore) GetSuggestedLinks(ctx context.Context, exerciseID string, count int) ([]*link.ExerciseLink, error) {
	s.mu.RLock()
	if _, ok := s.exercises[exerciseID]; !ok {
		s.mu.RUnlock()
		return nil, link.ErrExerciseNotFound
	}
	suggest := s.suggest
	exclude := make(map[string]bool)
	for _, l := range s.links[exerciseID] {
		if l.IsActive {
			exclude[l.TargetExerciseID] = true
		}
	}
	fixtures := s.suggestions[exerciseID]
	targetNames := make(map[string]string, len(fixtures))
	for _, l := range fixtures {
		if target, ok := s.exercises[l.TargetExerciseID]; ok {
			targetNames[l.TargetExerciseID] = target.Name
		}
	}
	s.mu.RUnlock()

	if suggest != nil {
		return suggest(ctx, exerciseID, exclude, count)
	}

	var out []*link.ExerciseLink
	for _, l := range fixtures {
		if len(out) == count {
			break
		}
		if exclude[l.TargetExerciseID] {
			continue
		}
		c := l.Clone()
		if c.TargetName == "" {
			c.TargetName = targetNames[c.TargetExerciseID]
		}
		out = append(out, c)
	}
	return out, nil
}

// UpdateLink rewrites a link's display order and active flag.
func (s *InMemoryStore) UpdateLink(_ context.Context, exerciseID, linkID string, req dto.UpdateExerciseLinkRequest) (*link.ExerciseLink, error) {
	if req.DisplayOrder < 0 {
		return nil, dto.NewStoreError(dto.StoreErrInvalid, "display order cannot be negative", link.ErrNegativeOrder)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.links[exerciseID] {
		if l.ID == linkID {
			l.DisplayOrder = req.DisplayOrder
			l.IsActive = req.IsActive
			l.UpdatedAt = time.Now().UTC()
			return l.Clone(), nil
		}
	}
	return nil, link.ErrLinkNotFound
}

// DeleteLink removes a link.
func (s *InMemoryStore) DeleteLink(_ context.Context, exerciseID, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := s.links[exerciseID]
	for i, l := range links {
		if l.ID == linkID {
			s.links[exerciseID] = append(links[:i], links[i+1:]...)
			return nil
		}
	}
	return link.ErrLinkNotFound
}

// GetExercise returns a catalog record.
func (s *InMemoryStore) GetExercise(_ context.Context, exerciseID string) (*link.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ex, ok := s.exercises[exerciseID]
	if !ok {
		return nil, link.ErrExerciseNotFound
	}
	return ex, nil
}

// ListExercises returns all catalog records.
func (s *InMemoryStore) ListExercises(_ context.Context) ([]*link.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*link.Exercise, 0, len(s.exercises))
	for _, ex := range s.exercises {
		out = append(out, ex)
	}
	return out, nil
}
