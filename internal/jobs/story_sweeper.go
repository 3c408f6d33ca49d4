package jobs

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/pkg/logger"
)

// StoryStore deletes stories past their expiry. services.StoryService satisfies it.
type StoryStore interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// StorySweeper hard-deletes expired stories.
type StorySweeper struct {
	stories StoryStore
}

func NewStorySweeper(stories StoryStore) *StorySweeper {
	return &StorySweeper{stories: stories}
}

func (s *StorySweeper) Name() string { return "story_sweeper" }

func (s *StorySweeper) Run(ctx context.Context) error {
	n, err := s.stories.SweepExpired(ctx)
	if err != nil {
		return err
	}
	metrics.StoriesSwept.Add(float64(n))
	if n > 0 {
		logger.Ctx(ctx).Info().Int64("deleted", n).Msg("expired stories swept")
	}
	return nil
}
