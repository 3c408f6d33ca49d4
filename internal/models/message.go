package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   string    `json:"sender_id" gorm:"size:36;not null;index:idx_message_pair"`
	ReceiverID string    `json:"receiver_id" gorm:"size:36;not null;index:idx_message_pair;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	IsRead     bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// Conversation summarizes the latest exchange with one other participant.
type Conversation struct {
	User        UserCompact `json:"user"`
	LastMessage Message     `json:"last_message"`
	UnreadCount int64       `json:"unread_count"`
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=5000"`
}
