package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaAsset records an uploaded file in MongoDB.
type MediaAsset struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID     string             `json:"owner_id" bson:"owner_id"`
	Key         string             `json:"key" bson:"key"`
	URL         string             `json:"url" bson:"url"`
	ContentType string             `json:"content_type" bson:"content_type"`
	Size        int64              `json:"size" bson:"size"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
