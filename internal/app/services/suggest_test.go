package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

type stubCatalog struct {
	exercises map[string]*link.Exercise
	listErr   error
}

func (c *stubCatalog) GetExercise(_ context.Context, exerciseID string) (*link.Exercise, error) {
	ex, ok := c.exercises[exerciseID]
	if !ok {
		return nil, link.ErrExerciseNotFound
	}
	return ex, nil
}

func (c *stubCatalog) ListExercises(_ context.Context) ([]*link.Exercise, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]*link.Exercise, 0, len(c.exercises))
	for _, ex := range c.exercises {
		out = append(out, ex)
	}
	return out, nil
}

func catalogExercise(id, name string, muscles ...string) *link.Exercise {
	ex := &link.Exercise{
		ID:    id,
		Name:  name,
		Types: []link.TypeTag{{Value: link.TagWorkout}},
	}
	for _, m := range muscles {
		ex.MuscleGroups = append(ex.MuscleGroups, link.MuscleGroupAssignment{
			MuscleGroup: m,
			Role:        link.RolePrimary,
		})
	}
	return ex
}

func TestSuggestionService_SuggestAlternatives(t *testing.T) {
	catalog := &stubCatalog{exercises: map[string]*link.Exercise{
		"squat":    catalogExercise("squat", "Barbell Squat", "Quadriceps", "Glutes"),
		"legpress": catalogExercise("legpress", "Leg Press", "Quadriceps", "Glutes"),
		"lunge":    catalogExercise("lunge", "Lunge", "Quadriceps"),
		"curl":     catalogExercise("curl", "Bicep Curl", "Biceps"),
	}}
	// A rest-only exercise shares no type with the source.
	catalog.exercises["stretch"] = &link.Exercise{
		ID:    "stretch",
		Name:  "Static Stretch",
		Types: []link.TypeTag{{Value: "Rest"}},
		MuscleGroups: []link.MuscleGroupAssignment{
			{MuscleGroup: "Quadriceps", Role: link.RolePrimary},
		},
	}

	svc := NewSuggestionService(catalog)

	t.Run("ranks by overlap and skips self", func(t *testing.T) {
		got, err := svc.SuggestAlternatives(context.Background(), "squat", nil, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "legpress", got[0].Exercise.ID)
		assert.Equal(t, "lunge", got[1].Exercise.ID)
		assert.Equal(t, "curl", got[2].Exercise.ID)
		assert.Greater(t, got[0].Score, got[1].Score)
		assert.Zero(t, got[2].Score)
	})

	t.Run("excludes already-linked targets", func(t *testing.T) {
		got, err := svc.SuggestAlternatives(context.Background(), "squat",
			map[string]bool{"legpress": true}, 10)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, "lunge", got[0].Exercise.ID)
	})

	t.Run("type-incompatible candidates are dropped", func(t *testing.T) {
		got, err := svc.SuggestAlternatives(context.Background(), "squat", nil, 10)
		require.NoError(t, err)
		for _, s := range got {
			assert.NotEqual(t, "stretch", s.Exercise.ID)
		}
	})

	t.Run("count truncates the ranking", func(t *testing.T) {
		got, err := svc.SuggestAlternatives(context.Background(), "squat", nil, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "legpress", got[0].Exercise.ID)
	})

	t.Run("unknown source errors", func(t *testing.T) {
		_, err := svc.SuggestAlternatives(context.Background(), "missing", nil, 5)
		assert.ErrorIs(t, err, link.ErrExerciseNotFound)
	})

	t.Run("non-positive count returns nothing", func(t *testing.T) {
		got, err := svc.SuggestAlternatives(context.Background(), "squat", nil, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
