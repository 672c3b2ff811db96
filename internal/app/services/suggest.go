package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/usecases"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/similarity"
)

// Suggestion pairs a candidate exercise with its muscle-overlap score.
type Suggestion struct {
	Exercise *link.Exercise `json:"exercise"`
	Score    int            `json:"score"`
}

// SuggestionService ranks catalog exercises as alternative-link candidates
// for a source exercise. Candidates must share at least one exercise type
// with the source; ranking is by weighted muscle-group overlap.
type SuggestionService struct {
	catalog usecases.ExerciseCatalog
}

// NewSuggestionService creates a suggestion service over the given catalog.
func NewSuggestionService(catalog usecases.ExerciseCatalog) *SuggestionService {
	return &SuggestionService{catalog: catalog}
}

// SuggestAlternatives returns up to count candidates ordered by descending
// overlap score. The source itself and anything in exclude (already linked
// targets) are skipped, as are candidates sharing no exercise type with the
// source. Ties break on exercise name so results are deterministic.
func (s *SuggestionService) SuggestAlternatives(ctx context.Context, sourceID string, exclude map[string]bool, count int) ([]Suggestion, error) {
	if count <= 0 {
		return nil, nil
	}

	source, err := s.catalog.GetExercise(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load source exercise: %w", err)
	}

	candidates, err := s.catalog.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	var ranked []Suggestion
	for _, candidate := range candidates {
		if candidate == nil || candidate.ID == source.ID || exclude[candidate.ID] {
			continue
		}
		if len(similarity.SharedTypes(source, candidate)) == 0 {
			continue
		}
		ranked = append(ranked, Suggestion{
			Exercise: candidate,
			Score:    similarity.MuscleGroupOverlap(source, candidate),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Exercise.Name < ranked[j].Exercise.Name
	})

	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked, nil
}
