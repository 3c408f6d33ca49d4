package repositories

import (
	"context"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaRepository records uploaded media files.
type MediaRepository interface {
	Create(ctx context.Context, asset *models.MediaAsset) error
	ListByOwner(ctx context.Context, ownerID string, skip, limit int64) ([]models.MediaAsset, error)
}

// MongoMediaRepository implements MediaRepository for MongoDB
type MongoMediaRepository struct {
	collection *mongo.Collection
}

// NewMongoMediaRepository creates a new MongoMediaRepository
func NewMongoMediaRepository(db *mongo.Database) *MongoMediaRepository {
	return &MongoMediaRepository{collection: db.Collection("media")}
}

func (r *MongoMediaRepository) Create(ctx context.Context, asset *models.MediaAsset) error {
	asset.ID = primitive.NewObjectID()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, asset)
	return err
}

// ListByOwner returns an owner's uploads newest first.
func (r *MongoMediaRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int64) ([]models.MediaAsset, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assets := []models.MediaAsset{}
	if err = cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}
