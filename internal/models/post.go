package models

import "time"

const (
	MediaTypeImage    = "image"
	MediaTypeVideo    = "video"
	MediaTypeCarousel = "carousel"
)

// Post is a user's media post. Media keeps the URLs in display order.
type Post struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"size:36;index;not null"`
	Media         []string  `json:"media" gorm:"serializer:json;not null"`
	MediaType     string    `json:"media_type" gorm:"size:20;not null"`
	Caption       string    `json:"caption"`
	Location      string    `json:"location"`
	LikesCount    int64     `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EnrichedPost is a post with author info and viewer-specific flags
type EnrichedPost struct {
	Post
	Author   UserCompact `json:"author"`
	HasLiked bool        `json:"has_liked"`
	HasSaved bool        `json:"has_saved"`
}

type CreatePostRequest struct {
	Media     []string `json:"media" validate:"required,min=1,dive,required"`
	MediaType string   `json:"media_type" validate:"required,oneof=image video carousel"`
	Caption   string   `json:"caption" validate:"max=2200"`
	Location  string   `json:"location" validate:"max=100"`
}
