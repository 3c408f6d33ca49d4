package models

import "time"

// Comment represents a comment on a post. ParentID is set for replies.
type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PostID     uint      `json:"post_id" gorm:"index;not null"`
	UserID     string    `json:"user_id" gorm:"size:36;index;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	ParentID   *uint     `json:"parent_id,omitempty" gorm:"index"`
	LikesCount int64     `json:"likes_count" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentWithAuthor is a comment joined with its author's public profile
type CommentWithAuthor struct {
	Comment
	Author UserCompact `json:"author"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=1000"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
