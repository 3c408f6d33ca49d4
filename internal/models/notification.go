package models

import "time"

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification is created as a side effect of likes, comments and follows.
type Notification struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;index"` // recipient
	FromUserID string    `json:"from_user_id" gorm:"size:36;not null"`
	Type       string    `json:"type" gorm:"size:20;not null"`
	PostID     *uint     `json:"post_id,omitempty" gorm:"index"`
	CommentID  *uint     `json:"comment_id,omitempty" gorm:"index"`
	Content    *string   `json:"content,omitempty"`
	IsRead     bool      `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// NotificationWithActor is a notification joined with the acting user's profile
type NotificationWithActor struct {
	Notification
	FromUser UserCompact `json:"from_user"`
}
