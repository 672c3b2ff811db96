package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
)

func testSnapshot(id, exerciseID string, takenAt time.Time) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID:           id,
		ExerciseID:   exerciseID,
		ExerciseName: "Barbell Squat",
		Links: []link.ExerciseLink{
			{
				ID:               "link-1",
				SourceExerciseID: exerciseID,
				TargetExerciseID: "ex-2",
				Type:             link.TypeWarmup,
				DisplayOrder:     1,
				IsActive:         true,
			},
		},
		Metadata: snapshot.Metadata{Source: "test"},
		TakenAt:  takenAt,
		Version:  "1.0",
	}
}

func TestInMemorySaver_SaveLoad(t *testing.T) {
	saver := NewSaver()
	defer saver.Close()
	ctx := context.Background()

	snap := testSnapshot("snap-1", "ex-1", time.Now().UTC())
	require.NoError(t, saver.Save(ctx, snap))

	loaded, err := saver.Load(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "ex-1", loaded.ExerciseID)
	assert.Equal(t, "Barbell Squat", loaded.ExerciseName)
	require.Len(t, loaded.Links, 1)
	assert.Equal(t, link.TypeWarmup, loaded.Links[0].Type)
}

func TestInMemorySaver_LoadMissing(t *testing.T) {
	saver := NewSaver()
	defer saver.Close()

	_, err := saver.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}

func TestInMemorySaver_SaveInvalid(t *testing.T) {
	saver := NewSaver()
	defer saver.Close()

	err := saver.Save(context.Background(), &snapshot.Snapshot{ExerciseID: "ex-1"})
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshotID)
}

func TestInMemorySaver_LoadLatest(t *testing.T) {
	saver := NewSaver()
	defer saver.Close()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, saver.Save(ctx, testSnapshot("old", "ex-1", base.Add(-time.Hour))))
	require.NoError(t, saver.Save(ctx, testSnapshot("new", "ex-1", base)))
	require.NoError(t, saver.Save(ctx, testSnapshot("other", "ex-2", base.Add(time.Hour))))

	latest, err := saver.LoadLatest(ctx, "ex-1")
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)

	_, err = saver.LoadLatest(ctx, "ex-3")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}

func TestInMemorySaver_ListFilters(t *testing.T) {
	saver := NewSaver()
	defer saver.Close()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, saver.Save(ctx, testSnapshot("s1", "ex-1", base.Add(-2*time.Hour))))
	require.NoError(t, saver.Save(ctx, testSnapshot("s2", "ex-1", base.Add(-time.Hour))))
	require.NoError(t, saver.Save(ctx, testSnapshot("s3", "ex-2", base)))

	byExercise, err := saver.List(ctx, snapshot.Filter{ExerciseID: "ex-1"})
	require.NoError(t, err)
	assert.Len(t, byExercise, 2)

	since := base.Add(-90 * time.Minute)
	recent, err := saver.List(ctx, snapshot.Filter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	limited, err := saver.List(ctx, snapshot.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = saver.List(ctx, snapshot.Filter{Limit: -1})
	assert.ErrorIs(t, err, snapshot.ErrInvalidLimit)
}

func TestInMemorySaver_Delete(t *testing.T) {
	saver := NewSaver()
	defer saver.Close()
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, testSnapshot("snap-1", "ex-1", time.Now().UTC())))
	require.NoError(t, saver.Delete(ctx, "snap-1"))

	_, err := saver.Load(ctx, "snap-1")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	assert.ErrorIs(t, saver.Delete(ctx, "snap-1"), snapshot.ErrSnapshotNotFound)
}

func TestInMemorySaver_TTLExpiry(t *testing.T) {
	saver := NewInMemorySaver(InMemoryConfig{
		DefaultTTL:      10 * time.Millisecond,
		CleanupInterval: time.Hour,
	})
	defer saver.Close()
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, testSnapshot("snap-1", "ex-1", time.Now().UTC())))
	time.Sleep(20 * time.Millisecond)

	_, err := saver.Load(ctx, "snap-1")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}
