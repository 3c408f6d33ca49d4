package services

import (
	"context"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_MediaRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "a")

	cases := []struct {
		name  string
		media []string
		kind  string
		ok    bool
	}{
		{"single image", []string{"a.jpg"}, models.MediaTypeImage, true},
		{"single video", []string{"a.mp4"}, models.MediaTypeVideo, true},
		{"carousel", []string{"a.jpg", "b.jpg"}, models.MediaTypeCarousel, true},
		{"no media", nil, models.MediaTypeImage, false},
		{"blank media", []string{"  "}, models.MediaTypeImage, false},
		{"image with two items", []string{"a.jpg", "b.jpg"}, models.MediaTypeImage, false},
		{"carousel of one", []string{"a.jpg"}, models.MediaTypeCarousel, false},
		{"unknown type", []string{"a.gif"}, "gif", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post, err := f.posts.CreatePost(ctx, "a", models.CreatePostRequest{Media: tc.media, MediaType: tc.kind})
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, "a", post.Author.ID)
				return
			}
			assertCode(t, err, models.CodeValidation)
		})
	}
	assert.Equal(t, int64(3), testutil.ReloadUser(t, f.db, "a").PostCount)
}

func TestFeed_Scopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"me", "friend", "stranger"} {
		testutil.CreateUser(t, f.db, id)
	}
	require.NoError(t, f.social.FollowUser(ctx, "me", "friend"))

	mine := f.createPost(t, "me", "mine")
	friends := f.createPost(t, "friend", "friend")
	strangers := f.createPost(t, "stranger", "stranger")

	global, err := f.posts.GetFeedPosts(ctx, "me", FeedGlobal, 0, 10)
	require.NoError(t, err)
	assert.Len(t, global, 3)

	following, err := f.posts.GetFeedPosts(ctx, "me", ParseFeedScope("FOLLOWING"), 0, 10)
	require.NoError(t, err)
	ids := make([]uint, len(following))
	for i, p := range following {
		ids[i] = p.ID
	}
	assert.ElementsMatch(t, []uint{mine.ID, friends.ID}, ids)
	assert.NotContains(t, ids, strangers.ID)

	assert.Equal(t, FeedGlobal, ParseFeedScope("bogus"))
}

func TestFeed_ViewerFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "viewer")
	post := f.createPost(t, "owner", "")

	_, err := f.posts.LikePost(ctx, "viewer", post.ID)
	require.NoError(t, err)

	got, err := f.posts.GetPost(ctx, post.ID, "viewer")
	require.NoError(t, err)
	assert.True(t, got.HasLiked)
	assert.False(t, got.HasSaved)

	got, err = f.posts.GetPost(ctx, post.ID, "owner")
	require.NoError(t, err)
	assert.False(t, got.HasLiked)

	_, err = f.posts.GetUserPosts(ctx, "ghost", "viewer", 0, 10)
	assertCode(t, err, models.CodeNotFound)
}

func TestDeletePost_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "owner")
	testutil.CreateUser(t, f.db, "fan")
	post := f.createPost(t, "owner", "")

	comment, err := f.comments.CreateComment(ctx, post.ID, "fan", "wow", nil)
	require.NoError(t, err)
	_, err = f.comments.LikeComment(ctx, "owner", comment.ID)
	require.NoError(t, err)
	_, err = f.posts.LikePost(ctx, "fan", post.ID)
	require.NoError(t, err)
	_, err = f.posts.SavePost(ctx, "fan", post.ID)
	require.NoError(t, err)

	assertCode(t, f.posts.DeletePost(ctx, post.ID, "fan"), models.CodeForbidden)
	require.NoError(t, f.posts.DeletePost(ctx, post.ID, "owner"))

	assert.Zero(t, testutil.ReloadUser(t, f.db, "owner").PostCount)
	for _, model := range []interface{}{&models.Post{}, &models.Comment{}, &models.Like{}, &models.SavedPost{}, &models.Notification{}} {
		var n int64
		require.NoError(t, f.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}

	_, err = f.posts.GetPost(ctx, post.ID, "owner")
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, f.posts.DeletePost(ctx, post.ID, "owner"), models.CodeNotFound)
}
