package services

import (
	"context"
	"errors"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"gorm.io/gorm"
)

type likeMode int

const (
	likeSet likeMode = iota
	likeUnset
	likeToggle
)

// LikeState is the viewer's like status on a target after a mutation.
type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// SaveState is the viewer's save status on a post after a mutation.
type SaveState struct {
	Saved bool `json:"saved"`
}

// applyLike moves the like row for (userID, target) into the state mode asks for
// and adjusts the target's counter through adjust. It returns the final state
// and the counter delta that was applied.
func applyLike(ctx context.Context, likes repositories.LikeRepository, userID string, target models.LikeTarget, mode likeMode, adjust func(delta int64) error) (bool, int64, error) {
	liked, err := likes.Exists(ctx, userID, target)
	if err != nil {
		return false, 0, err
	}

	want := liked
	switch mode {
	case likeSet:
		want = true
	case likeUnset:
		want = false
	case likeToggle:
		want = !liked
	}

	switch {
	case want && !liked:
		if err := likes.Create(ctx, userID, target); err != nil {
			return false, 0, err
		}
		return true, 1, adjust(1)
	case !want && liked:
		removed, err := likes.Delete(ctx, userID, target)
		if err != nil {
			return false, 0, err
		}
		if !removed {
			return false, 0, nil
		}
		return false, -1, adjust(-1)
	default:
		return liked, 0, nil
	}
}

// lostRace reports whether a concurrent request inserted the same relationship row first.
func lostRace(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
