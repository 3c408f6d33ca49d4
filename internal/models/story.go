package models

import "time"

// StoryTTL is how long a story stays active after creation.
const StoryTTL = 24 * time.Hour

// Story is a short-lived media item. ExpiresAt is fixed at creation.
type Story struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;index"`
	MediaURL   string    `json:"media_url" gorm:"not null"`
	MediaType  string    `json:"media_type" gorm:"size:20;not null"`
	ViewsCount int64     `json:"views_count" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"index;not null"`
}

// IsActive reports whether the story is visible at now.
func (s *Story) IsActive(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// StoryView tracks which viewers have seen a story
type StoryView struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoryID   uint      `json:"story_id" gorm:"not null;index;uniqueIndex:idx_story_viewer"`
	ViewerID  string    `json:"viewer_id" gorm:"size:36;not null;uniqueIndex:idx_story_viewer"`
	CreatedAt time.Time `json:"created_at"`
}

// StoryGroup is one author's active stories as shown in the story tray.
type StoryGroup struct {
	User      UserCompact `json:"user"`
	Stories   []Story     `json:"stories"`
	HasUnseen bool        `json:"has_unseen"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
}
