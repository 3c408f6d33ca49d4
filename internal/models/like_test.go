package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeTarget(t *testing.T) {
	post := PostTarget(3)
	assert.True(t, post.Valid())
	assert.Equal(t, "post:3", post.String())

	assert.False(t, LikeTarget{}.Valid())
	assert.False(t, CommentTarget(0).Valid())
}

func TestLike_TargetRoundTrip(t *testing.T) {
	for _, target := range []LikeTarget{PostTarget(1), CommentTarget(2)} {
		like := NewLike("u1", target)
		got, err := like.Target()
		require.NoError(t, err)
		assert.Equal(t, target, got)
	}

	id := uint(5)
	both := &Like{UserID: "u1", PostID: &id, CommentID: &id}
	_, err := both.Target()
	assert.ErrorIs(t, err, ErrInvalidLikeTarget)
	assert.ErrorIs(t, both.BeforeCreate(nil), ErrInvalidLikeTarget)

	_, err = (&Like{UserID: "u1"}).Target()
	assert.ErrorIs(t, err, ErrInvalidLikeTarget)
}

func TestAppError_Status(t *testing.T) {
	assert.Equal(t, 400, NewValidationError("x").Status())
	assert.Equal(t, 401, NewUnauthorizedError("x").Status())
	assert.Equal(t, 403, NewForbiddenError("x").Status())
	assert.Equal(t, 404, NewNotFoundError("post", 1).Status())
	assert.Equal(t, 409, NewDuplicateError("x").Status())
	assert.Equal(t, 500, NewStorageError(nil).Status())

	wrapped := NewStorageError(ErrInvalidLikeTarget)
	assert.ErrorIs(t, wrapped, ErrInvalidLikeTarget)
	assert.True(t, HasCode(wrapped, CodeStorage))
	assert.False(t, HasCode(nil, CodeStorage))
}
