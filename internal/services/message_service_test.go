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

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "a")
	testutil.CreateUser(t, f.db, "b")

	msg, delivered, err := f.messages.SendMessage(ctx, "a", "b", " hello ")
	require.NoError(t, err)
	assert.False(t, delivered, "b is offline")
	assert.Equal(t, "hello", msg.Content)
	assert.NotZero(t, msg.ID)

	events := f.pusher.eventsFor("b")
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventNewMessage, events[0].Type)

	thread, err := f.messages.GetConversation(ctx, "b", "a", 0, 0)
	require.NoError(t, err)
	require.Len(t, thread, 1, "undelivered messages stay retrievable")
	assert.Equal(t, msg.ID, thread[0].ID)
	assert.Equal(t, "a", thread[0].SenderID)
	assert.Equal(t, "hello", thread[0].Content)
	assert.False(t, thread[0].IsRead)

	f.pusher.online["b"] = true
	_, delivered, err = f.messages.SendMessage(ctx, "a", "b", "again")
	require.NoError(t, err)
	assert.True(t, delivered)

	_, _, err = f.messages.SendMessage(ctx, "a", "b", "   ")
	assertCode(t, err, models.CodeValidation)
	_, _, err = f.messages.SendMessage(ctx, "a", "a", "me")
	assertCode(t, err, models.CodeValidation)
	_, _, err = f.messages.SendMessage(ctx, "a", "ghost", "hi")
	assertCode(t, err, models.CodeNotFound)
}

func TestConversations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		testutil.CreateUser(t, f.db, id)
	}
	send := func(from, to, content string) {
		_, _, err := f.messages.SendMessage(ctx, from, to, content)
		require.NoError(t, err)
	}
	send("b", "a", "1")
	send("c", "a", "2")
	send("a", "c", "3")
	send("b", "a", "4")

	convs, err := f.messages.GetConversations(ctx, "a")
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "b", convs[0].User.ID)
	assert.Equal(t, "4", convs[0].LastMessage.Content)
	assert.Equal(t, int64(2), convs[0].UnreadCount)
	assert.Equal(t, "c", convs[1].User.ID)
	assert.Equal(t, int64(1), convs[1].UnreadCount)

	thread, err := f.messages.GetConversation(ctx, "a", "b", 0, 0)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "1", thread[0].Content)

	n, err := f.messages.MarkMessagesAsRead(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	convs, err = f.messages.GetConversations(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, convs[0].UnreadCount)

	empty, err := f.messages.GetConversations(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
