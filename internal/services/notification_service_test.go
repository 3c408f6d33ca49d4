package services

import (
	"context"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_ReadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		testutil.CreateUser(t, f.db, id)
	}
	require.NoError(t, f.social.FollowUser(ctx, "b", "a"))
	require.NoError(t, f.social.FollowUser(ctx, "c", "a"))

	list, err := f.notifier.GetNotifications(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].FromUserID, "newest first")

	n, err := f.notifier.UnreadCount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assertCode(t, f.notifier.MarkAsRead(ctx, list[0].ID, "b"), models.CodeNotFound)
	require.NoError(t, f.notifier.MarkAsRead(ctx, list[0].ID, "a"))

	n, err = f.notifier.UnreadCount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	updated, err := f.notifier.MarkAllAsRead(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	n, err = f.notifier.UnreadCount(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotifications_PushCarriesActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "a")
	testutil.CreateUser(t, f.db, "b")
	f.pusher.online["a"] = true

	require.NoError(t, f.social.FollowUser(ctx, "b", "a"))

	events := f.pusher.eventsFor("a")
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventNewNotification, events[0].Type)
	payload, ok := events[0].Data.(models.NotificationWithActor)
	require.True(t, ok)
	assert.Equal(t, "b", payload.FromUser.ID)
	assert.Equal(t, models.NotificationFollow, payload.Type)

	assert.False(t, f.notifier.Push(ctx, nil))
	assert.True(t, f.notifier.Forward(ctx, "a", map[string]string{"hello": "world"}))
}
