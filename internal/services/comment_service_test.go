package services

import (
	"context"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "writer")
	post := f.createPost(t, "owner", "")

	comment, err := f.comments.CreateComment(ctx, post.ID, "writer", "  first!  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "first!", comment.Content)
	assert.Equal(t, "writer", comment.Author.ID)
	assert.Equal(t, int64(1), f.post(t, post.ID).CommentsCount)

	notifs, err := f.notifier.GetNotifications(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationComment, notifs[0].Type)
	require.NotNil(t, notifs[0].Content)
	assert.Equal(t, "first!", *notifs[0].Content)

	t.Run("empty content", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, post.ID, "writer", "   ", nil)
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, 999, "writer", "hi", nil)
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("parent on another post", func(t *testing.T) {
		other := f.createPost(t, "owner", "")
		_, err := f.comments.CreateComment(ctx, other.ID, "writer", "hi", &comment.ID)
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("owner comment does not notify", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, post.ID, "owner", "thanks", nil)
		require.NoError(t, err)
		n, err := f.notifier.UnreadCount(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestDeleteComment_RemovesThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "writer")
	testutil.CreateUser(t, f.db, "stranger")
	post := f.createPost(t, "owner", "")

	root, err := f.comments.CreateComment(ctx, post.ID, "writer", "root", nil)
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, post.ID, "owner", "reply", &root.ID)
	require.NoError(t, err)
	keep, err := f.comments.CreateComment(ctx, post.ID, "writer", "keep", nil)
	require.NoError(t, err)
	_, err = f.comments.LikeComment(ctx, "owner", root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.post(t, post.ID).CommentsCount)

	assertCode(t, f.comments.DeleteComment(ctx, root.ID, "stranger"), models.CodeForbidden)

	// The post owner may moderate comments on their post.
	require.NoError(t, f.comments.DeleteComment(ctx, root.ID, "owner"))
	assert.Equal(t, int64(1), f.post(t, post.ID).CommentsCount)

	list, err := f.comments.ListComments(ctx, post.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	var likes int64
	require.NoError(t, f.db.Model(&models.Like{}).Where("comment_id = ?", root.ID).Count(&likes).Error)
	assert.Zero(t, likes)

	assertCode(t, f.comments.DeleteComment(ctx, root.ID, "owner"), models.CodeNotFound)
}

func TestUpdateComment_OnlyAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "writer")
	post := f.createPost(t, "owner", "")

	comment, err := f.comments.CreateComment(ctx, post.ID, "writer", "tpyo", nil)
	require.NoError(t, err)

	_, err = f.comments.UpdateComment(ctx, comment.ID, "owner", "typo")
	assertCode(t, err, models.CodeForbidden)

	updated, err := f.comments.UpdateComment(ctx, comment.ID, "writer", "typo")
	require.NoError(t, err)
	assert.Equal(t, "typo", updated.Content)

	_, err = f.comments.UpdateComment(ctx, comment.ID, "writer", "")
	assertCode(t, err, models.CodeValidation)
}
