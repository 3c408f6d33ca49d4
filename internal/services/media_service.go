package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/pkg/clock"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/anonto42/instaclone/backend/pkg/storage"
	"github.com/google/uuid"
)

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaService stores uploaded images and videos and records them.
type MediaService struct {
	store  storage.Storage
	assets repositories.MediaRepository
	clock  clock.Clock
}

// NewMediaService builds a MediaService. assets may be nil, in which case
// uploads are stored but not recorded.
func NewMediaService(store storage.Storage, assets repositories.MediaRepository, clk clock.Clock) *MediaService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MediaService{store: store, assets: assets, clock: clk}
}

// Upload writes each file to object storage and returns the hosted assets
// in request order.
func (s *MediaService) Upload(ctx context.Context, ownerID string, files []Upload) ([]models.MediaAsset, error) {
	if len(files) == 0 {
		return nil, models.NewValidationError("at least one file is required")
	}
	for _, f := range files {
		if !isMediaType(f.ContentType) {
			return nil, models.NewValidationError(fmt.Sprintf("%s: only image and video uploads are allowed", f.Filename))
		}
	}

	out := make([]models.MediaAsset, 0, len(files))
	for _, f := range files {
		key := path.Join("media", ownerID, uuid.NewString()+strings.ToLower(path.Ext(f.Filename)))
		if err := s.store.Write(ctx, key, f.Body, f.Size, f.ContentType); err != nil {
			return nil, models.NewStorageError(err)
		}
		url, err := s.store.URL(ctx, key)
		if err != nil {
			return nil, models.NewStorageError(err)
		}

		asset := models.MediaAsset{
			OwnerID:     ownerID,
			Key:         key,
			URL:         url,
			ContentType: f.ContentType,
			Size:        f.Size,
			CreatedAt:   s.clock.Now(),
		}
		if s.assets != nil {
			if err := s.assets.Create(ctx, &asset); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("media metadata not recorded")
			}
		}
		out = append(out, asset)
	}
	return out, nil
}

func isMediaType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}
