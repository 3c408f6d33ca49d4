package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TargetKind names what a like points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// LikeTarget is either a post or a comment, never both.
// The zero value is invalid; build one with PostTarget or CommentTarget.
type LikeTarget struct {
	kind TargetKind
	id   uint
}

func PostTarget(postID uint) LikeTarget {
	return LikeTarget{kind: TargetPost, id: postID}
}

func CommentTarget(commentID uint) LikeTarget {
	return LikeTarget{kind: TargetComment, id: commentID}
}

func (t LikeTarget) Kind() TargetKind { return t.kind }
func (t LikeTarget) ID() uint         { return t.id }

func (t LikeTarget) Valid() bool {
	return (t.kind == TargetPost || t.kind == TargetComment) && t.id != 0
}

func (t LikeTarget) String() string {
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}

var ErrInvalidLikeTarget = errors.New("like must reference exactly one of post or comment")

// Like is a user's like on a post or a comment.
// Exactly one of PostID and CommentID is set; use NewLike to build one.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_like_user_post;uniqueIndex:idx_like_user_comment"`
	PostID    *uint     `json:"post_id,omitempty" gorm:"index;uniqueIndex:idx_like_user_post"`
	CommentID *uint     `json:"comment_id,omitempty" gorm:"index;uniqueIndex:idx_like_user_comment"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLike(userID string, target LikeTarget) *Like {
	like := &Like{UserID: userID}
	id := target.ID()
	switch target.Kind() {
	case TargetPost:
		like.PostID = &id
	case TargetComment:
		like.CommentID = &id
	}
	return like
}

// Target decodes the stored columns back into a LikeTarget.
func (l *Like) Target() (LikeTarget, error) {
	switch {
	case l.PostID != nil && l.CommentID == nil:
		return PostTarget(*l.PostID), nil
	case l.CommentID != nil && l.PostID == nil:
		return CommentTarget(*l.CommentID), nil
	default:
		return LikeTarget{}, ErrInvalidLikeTarget
	}
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	t, err := l.Target()
	if err != nil {
		return err
	}
	if !t.Valid() {
		return ErrInvalidLikeTarget
	}
	return nil
}
