// Package services implements the social operations on top of the repositories.
// Each mutation keeps relationship rows and their denormalized counters in one
// transaction and pushes realtime events only after commit.
package services

import (
	"context"
	"errors"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	maxNotifications = 50
	maxSuggestions   = 10
	maxSearchResults = 20
)

// Pusher delivers realtime events. realtime.Registry satisfies it.
type Pusher interface {
	SendTo(ctx context.Context, userID string, event realtime.Event) bool
}

type nopPusher struct{}

func (nopPusher) SendTo(context.Context, string, realtime.Event) bool { return false }

func pusherOrNop(p Pusher) Pusher {
	if p == nil {
		return nopPusher{}
	}
	return p
}

// NormalizePage clamps offset and limit to valid values.
func NormalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}

// classify converts a repository error into an AppError.
func classify(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewDuplicateError(resource + " already exists")
	default:
		return models.NewStorageError(err)
	}
}

// storageErr wraps err unless it is already classified.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewStorageError(err)
}

func compactUsers(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
