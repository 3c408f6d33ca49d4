package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	runs atomic.Int32
	err  error
}

func (t *countingTask) Name() string { return "counting" }

func (t *countingTask) Run(context.Context) error {
	t.runs.Add(1)
	return t.err
}

func TestRunner_TicksUntilStopped(t *testing.T) {
	task := &countingTask{}
	r := NewRunner(task, 5*time.Millisecond)
	r.Start(context.Background())

	require.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, time.Millisecond)
	r.Stop()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_StopTwice(t *testing.T) {
	r := NewRunner(&countingTask{}, time.Hour)
	r.Start(context.Background())

	assert.NotPanics(t, func() {
		r.Stop()
		r.Stop()
	})
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(&countingTask{}, time.Hour)
	r.Start(ctx)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner ignored cancellation")
	}
}

func TestRunOnce_ReturnsTaskError(t *testing.T) {
	boom := errors.New("boom")
	assert.ErrorIs(t, RunOnce(context.Background(), &countingTask{err: boom}), boom)
}

func TestStorySweeper(t *testing.T) {
	db := testutil.NewTestDB(t)
	clock := testutil.FixedClock()
	ctx := context.Background()
	testutil.CreateUser(t, db, "a")

	stories := services.NewStoryService(db, repositories.NewPostgresStoryRepository(db), repositories.NewPostgresUserRepository(db), clock)
	_, err := stories.CreateStory(ctx, "a", "old.jpg", models.MediaTypeImage)
	require.NoError(t, err)
	clock.Advance(12 * time.Hour)
	_, err = stories.CreateStory(ctx, "a", "new.jpg", models.MediaTypeImage)
	require.NoError(t, err)
	clock.Advance(13 * time.Hour)

	sweeper := NewStorySweeper(stories)
	require.NoError(t, RunOnce(ctx, sweeper))

	var left []models.Story
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "new.jpg", left[0].MediaURL)

	// Nothing left to sweep is not an error.
	require.NoError(t, RunOnce(ctx, sweeper))
}

func TestCounterReconciler(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "a")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "a").Update("follower_count", 9).Error)

	require.NoError(t, RunOnce(context.Background(), NewCounterReconciler(repositories.NewPostgresCounterRepository(db))))
	assert.Zero(t, testutil.ReloadUser(t, db, "a").FollowerCount)
}
