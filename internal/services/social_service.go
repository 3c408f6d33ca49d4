package services

import (
	"context"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"gorm.io/gorm"
)

// SocialService owns the follow graph and user profiles.
type SocialService struct {
	db            *gorm.DB
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	notifications repositories.NotificationRepository
	notifier      *NotificationService
}

func NewSocialService(
	db *gorm.DB,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	notifications repositories.NotificationRepository,
	notifier *NotificationService,
) *SocialService {
	return &SocialService{
		db:            db,
		users:         users,
		follows:       follows,
		notifications: notifications,
		notifier:      notifier,
	}
}

// FollowUser records followerID following followingID, bumps both counters
// and notifies the followed user, all in one transaction.
func (s *SocialService) FollowUser(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return models.NewValidationError("cannot follow yourself")
	}

	var notif *models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if ok, err := users.Exists(ctx, followingID); err != nil {
			return storageErr(err)
		} else if !ok {
			return models.NewNotFoundError("user", followingID)
		}

		follows := s.follows.WithTx(tx)
		if ok, err := follows.IsFollowing(ctx, followerID, followingID); err != nil {
			return storageErr(err)
		} else if ok {
			return models.NewDuplicateError("already following this user")
		}

		if err := follows.Create(ctx, &models.Follow{FollowerID: followerID, FollowingID: followingID}); err != nil {
			if lostRace(err) {
				return models.NewDuplicateError("already following this user")
			}
			return storageErr(err)
		}
		if err := users.AdjustCounter(ctx, followerID, repositories.UserFollowingCount, 1); err != nil {
			return classify(err, "user", followerID)
		}
		if err := users.AdjustCounter(ctx, followingID, repositories.UserFollowerCount, 1); err != nil {
			return classify(err, "user", followingID)
		}

		notif = newNotification(models.NotificationFollow, followingID, followerID, nil, nil, nil)
		return storageErr(s.notifications.WithTx(tx).Create(ctx, notif))
	})
	if err != nil {
		return err
	}

	s.notifier.Push(ctx, notif)
	return nil
}

// UnfollowUser removes the follow and decrements both counters, floored at zero.
func (s *SocialService) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := s.follows.WithTx(tx).Delete(ctx, followerID, followingID)
		if err != nil {
			return storageErr(err)
		}
		if !removed {
			return &models.AppError{Code: models.CodeNotFound, Message: "not following this user"}
		}

		users := s.users.WithTx(tx)
		if err := users.AdjustCounter(ctx, followerID, repositories.UserFollowingCount, -1); err != nil {
			return classify(err, "user", followerID)
		}
		return classify(users.AdjustCounter(ctx, followingID, repositories.UserFollowerCount, -1), "user", followingID)
	})
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, followerID, followingID)
	return ok, storageErr(err)
}

func (s *SocialService) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]models.UserCompact, error) {
	offset, limit = NormalizePage(offset, limit)
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.follows.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return compactUsers(users), nil
}

func (s *SocialService) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]models.UserCompact, error) {
	offset, limit = NormalizePage(offset, limit)
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.follows.ListFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return compactUsers(users), nil
}

// GetSuggestedUsers returns popular users that userID does not follow yet.
func (s *SocialService) GetSuggestedUsers(ctx context.Context, userID string) ([]models.UserCompact, error) {
	users, err := s.users.Suggested(ctx, userID, maxSuggestions)
	if err != nil {
		return nil, storageErr(err)
	}
	return compactUsers(users), nil
}

// SearchUsers matches username, first or last name, excluding the caller.
func (s *SocialService) SearchUsers(ctx context.Context, query, excludeUserID string) ([]models.UserCompact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("search query is required")
	}
	users, err := s.users.Search(ctx, query, excludeUserID, maxSearchResults)
	if err != nil {
		return nil, storageErr(err)
	}
	return compactUsers(users), nil
}

// GetProfile returns userID's profile as seen by viewerID.
func (s *SocialService) GetProfile(ctx context.Context, userID, viewerID string) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err, "user", userID)
	}
	profile := &models.UserProfile{User: *user}
	if viewerID != "" && viewerID != userID {
		if profile.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, storageErr(err)
		}
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *SocialService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if len(updates) > 0 {
		if err := s.users.Update(ctx, userID, updates); err != nil {
			return nil, classify(err, "user", userID)
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err, "user", userID)
	}
	return user, nil
}

func (s *SocialService) requireUser(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return models.NewNotFoundError("user", userID)
	}
	return nil
}
