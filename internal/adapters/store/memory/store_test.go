package adapters

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

func seededStore(t *testing.T) *InMemoryStore {
	t.Helper()
	store := NewInMemoryStore()
	store.SeedExercises(
		&link.Exercise{ID: "squat", Name: "Barbell Squat", Types: []link.TypeTag{{Value: link.TagWorkout}}},
		&link.Exercise{ID: "lunge", Name: "Lunge", Types: []link.TypeTag{{Value: link.TagWarmup}}},
		&link.Exercise{ID: "walk", Name: "Treadmill Walk", Types: []link.TypeTag{{Value: link.TagCooldown}}},
	)
	return store
}

func TestInMemoryStore_CreateLink(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active link with a generated ID", func(t *testing.T) {
		store := seededStore(t)

		created, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "lunge",
			LinkType:         "Warmup",
			DisplayOrder:     1,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "squat", created.SourceExerciseID)
		assert.Equal(t, link.TypeWarmup, created.Type)
		assert.True(t, created.IsActive)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("rejects unknown endpoints", func(t *testing.T) {
		store := seededStore(t)

		_, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "ghost",
			LinkType:         "Warmup",
		})
		assert.ErrorIs(t, err, link.ErrExerciseNotFound)

		_, err = store.CreateLink(ctx, "ghost", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "lunge",
			LinkType:         "Warmup",
		})
		assert.ErrorIs(t, err, link.ErrExerciseNotFound)
	})

	t.Run("rejects self-loops", func(t *testing.T) {
		store := seededStore(t)

		_, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "squat",
			LinkType:         "Warmup",
		})

		assert.ErrorIs(t, err, link.ErrSelfLoop)
		assert.Equal(t, dto.StoreErrInvalid, dto.StoreErrorKindOf(err))
	})

	t.Run("rejects active duplicates", func(t *testing.T) {
		store := seededStore(t)
		_, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "lunge",
			LinkType:         "Warmup",
		})
		require.NoError(t, err)

		_, err = store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "lunge",
			LinkType:         "Warmup",
		})
		assert.ErrorIs(t, err, link.ErrDuplicateLink)

		// Same target under a different type is a distinct link.
		_, err = store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "lunge",
			LinkType:         "Cooldown",
		})
		assert.NoError(t, err)
	})

	t.Run("rejects unknown link types", func(t *testing.T) {
		store := seededStore(t)

		_, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
			TargetExerciseID: "lunge",
			LinkType:         "Superset",
		})

		assert.ErrorIs(t, err, link.ErrInvalidLinkType)
	})
}

func TestInMemoryStore_GetLinks(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	_, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{TargetExerciseID: "lunge", LinkType: "Warmup", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{TargetExerciseID: "walk", LinkType: "Cooldown", DisplayOrder: 1})
	require.NoError(t, err)

	t.Run("returns all links with details", func(t *testing.T) {
		resp, err := store.GetLinks(ctx, "squat", dto.LinkQuery{IncludeDetails: true})
		require.NoError(t, err)
		assert.Equal(t, "Barbell Squat", resp.ExerciseName)
		assert.Equal(t, 2, resp.TotalCount)

		names := map[string]string{}
		for _, l := range resp.Links {
			names[l.TargetExerciseID] = l.TargetName
		}
		assert.Equal(t, "Lunge", names["lunge"])
		assert.Equal(t, "Treadmill Walk", names["walk"])
	})

	t.Run("details off leaves target names empty", func(t *testing.T) {
		resp, err := store.GetLinks(ctx, "squat", dto.LinkQuery{})
		require.NoError(t, err)
		for _, l := range resp.Links {
			assert.Empty(t, l.TargetName)
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		warmup := link.TypeWarmup
		resp, err := store.GetLinks(ctx, "squat", dto.LinkQuery{Type: &warmup})
		require.NoError(t, err)
		require.Len(t, resp.Links, 1)
		assert.Equal(t, "lunge", resp.Links[0].TargetExerciseID)
	})

	t.Run("unknown exercise errors", func(t *testing.T) {
		_, err := store.GetLinks(ctx, "ghost", dto.LinkQuery{})
		assert.ErrorIs(t, err, link.ErrExerciseNotFound)
	})

	t.Run("returned links are isolated copies", func(t *testing.T) {
		resp, err := store.GetLinks(ctx, "squat", dto.LinkQuery{})
		require.NoError(t, err)
		resp.Links[0].DisplayOrder = 99

		again, err := store.GetLinks(ctx, "squat", dto.LinkQuery{})
		require.NoError(t, err)
		assert.NotEqual(t, 99, again.Links[0].DisplayOrder)
	})
}

func TestInMemoryStore_UpdateLink(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	created, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{TargetExerciseID: "lunge", LinkType: "Warmup", DisplayOrder: 1})
	require.NoError(t, err)

	updated, err := store.UpdateLink(ctx, "squat", created.ID, dto.UpdateExerciseLinkRequest{DisplayOrder: 7, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.DisplayOrder)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	_, err = store.UpdateLink(ctx, "squat", "missing", dto.UpdateExerciseLinkRequest{DisplayOrder: 1})
	assert.ErrorIs(t, err, link.ErrLinkNotFound)

	_, err = store.UpdateLink(ctx, "squat", created.ID, dto.UpdateExerciseLinkRequest{DisplayOrder: -1})
	assert.ErrorIs(t, err, link.ErrNegativeOrder)
}

func TestInMemoryStore_DeleteLink(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	created, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{TargetExerciseID: "lunge", LinkType: "Warmup"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteLink(ctx, "squat", created.ID))
	assert.ErrorIs(t, store.DeleteLink(ctx, "squat", created.ID), link.ErrLinkNotFound)

	resp, err := store.GetLinks(ctx, "squat", dto.LinkQuery{})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalCount)
}

func TestInMemoryStore_GetSuggestedLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("fixtures are filtered against linked targets", func(t *testing.T) {
		store := seededStore(t)
		store.SeedSuggestions("squat",
			&link.ExerciseLink{ID: "s1", SourceExerciseID: "squat", TargetExerciseID: "lunge", Type: link.TypeAlternative},
			&link.ExerciseLink{ID: "s2", SourceExerciseID: "squat", TargetExerciseID: "walk", Type: link.TypeAlternative},
		)
		_, err := store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{TargetExerciseID: "lunge", LinkType: "Alternative"})
		require.NoError(t, err)

		got, err := store.GetSuggestedLinks(ctx, "squat", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "walk", got[0].TargetExerciseID)
		assert.Equal(t, "Treadmill Walk", got[0].TargetName)
	})

	t.Run("installed suggester takes over", func(t *testing.T) {
		store := seededStore(t)
		store.SetSuggester(func(_ context.Context, exerciseID string, exclude map[string]bool, count int) ([]*link.ExerciseLink, error) {
			return []*link.ExerciseLink{{ID: "computed", SourceExerciseID: exerciseID}}, nil
		})

		got, err := store.GetSuggestedLinks(ctx, "squat", 3)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "computed", got[0].ID)
	})

	t.Run("unknown exercise errors", func(t *testing.T) {
		store := seededStore(t)
		_, err := store.GetSuggestedLinks(ctx, "ghost", 3)
		assert.ErrorIs(t, err, link.ErrExerciseNotFound)
	})
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "lunge"
			if i%2 == 0 {
				target = "walk"
			}
			_, _ = store.CreateLink(ctx, "squat", dto.CreateExerciseLinkRequest{
				TargetExerciseID: target,
				LinkType:         "Alternative",
			})
			_, _ = store.GetLinks(ctx, "squat", dto.LinkQuery{})
		}(i)
	}
	wg.Wait()

	// Exactly one link per distinct target survives the duplicate check.
	resp, err := store.GetLinks(ctx, "squat", dto.LinkQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
}
