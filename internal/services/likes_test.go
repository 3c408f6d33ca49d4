package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLike_SetAndUnsetAreIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "fan")
	post := f.createPost(t, "owner", "")

	for i := 0; i < 2; i++ {
		state, err := f.posts.LikePost(ctx, "fan", post.ID)
		require.NoError(t, err)
		assert.True(t, state.Liked)
		assert.Equal(t, int64(1), state.LikesCount)
	}
	assert.Equal(t, int64(1), f.post(t, post.ID).LikesCount)

	for i := 0; i < 2; i++ {
		state, err := f.posts.UnlikePost(ctx, "fan", post.ID)
		require.NoError(t, err)
		assert.False(t, state.Liked)
		assert.Zero(t, state.LikesCount)
	}
	assert.Zero(t, f.post(t, post.ID).LikesCount)

	// Only the first like notifies.
	unread, err := f.notifier.UnreadCount(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestPostLike_MissingPost(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "fan")

	_, err := f.posts.TogglePostLike(context.Background(), "fan", 999)
	assertCode(t, err, models.CodeNotFound)
}

func TestPostLike_OwnLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	post := f.createPost(t, "owner", "")

	_, err := f.posts.LikePost(ctx, "owner", post.ID)
	require.NoError(t, err)

	notifs, err := f.notifier.GetNotifications(ctx, "owner")
	require.NoError(t, err)
	assert.Empty(t, notifs)
	assert.Empty(t, f.pusher.eventsFor("owner"))
}

func TestPostLike_ConcurrentLikesKeepCountExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	post := f.createPost(t, "owner", "")

	const fans = 8
	for i := 0; i < fans; i++ {
		testutil.CreateUser(t, f.db, fmt.Sprintf("fan%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < fans; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			// Two requests per fan; the second must not double count.
			_, err := f.posts.LikePost(ctx, id, post.ID)
			assert.NoError(t, err)
			_, err = f.posts.LikePost(ctx, id, post.ID)
			assert.NoError(t, err)
		}(fmt.Sprintf("fan%d", i))
	}
	wg.Wait()

	assert.Equal(t, int64(fans), f.post(t, post.ID).LikesCount)
}

func TestSavePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "reader")
	post := f.createPost(t, "owner", "")

	state, err := f.posts.TogglePostSave(ctx, "reader", post.ID)
	require.NoError(t, err)
	assert.True(t, state.Saved)

	state, err = f.posts.SavePost(ctx, "reader", post.ID)
	require.NoError(t, err)
	assert.True(t, state.Saved)

	saved, err := f.posts.GetSavedPosts(ctx, "reader", 0, 10)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].HasSaved)

	state, err = f.posts.TogglePostSave(ctx, "reader", post.ID)
	require.NoError(t, err)
	assert.False(t, state.Saved)

	state, err = f.posts.UnsavePost(ctx, "reader", post.ID)
	require.NoError(t, err)
	assert.False(t, state.Saved)

	_, err = f.posts.SavePost(ctx, "reader", 12345)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentLike_NotifiesCommentAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "writer")
	testutil.CreateUser(t, f.db, "fan")
	post := f.createPost(t, "owner", "")

	comment, err := f.comments.CreateComment(ctx, post.ID, "writer", "nice", nil)
	require.NoError(t, err)

	state, err := f.comments.LikeComment(ctx, "fan", comment.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, int64(1), state.LikesCount)

	notifs, err := f.notifier.GetNotifications(ctx, "writer")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationLike, notifs[0].Type)
	require.NotNil(t, notifs[0].CommentID)
	assert.Equal(t, comment.ID, *notifs[0].CommentID)

	state, err = f.comments.ToggleCommentLike(ctx, "fan", comment.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Zero(t, state.LikesCount)

	_, err = f.comments.UnlikeComment(ctx, "fan", 4242)
	assertCode(t, err, models.CodeNotFound)
}
