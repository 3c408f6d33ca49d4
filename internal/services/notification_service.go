package services

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/pkg/logger"
)

// NotificationService reads notifications and pushes new ones to their recipients.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	pusher        Pusher
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository, pusher Pusher) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		pusher:        pusherOrNop(pusher),
	}
}

// newNotification builds a notification, or nil when actor and recipient are the same user.
func newNotification(kind, recipientID, actorID string, postID, commentID *uint, content *string) *models.Notification {
	if recipientID == actorID {
		return nil
	}
	return &models.Notification{
		UserID:     recipientID,
		FromUserID: actorID,
		Type:       kind,
		PostID:     postID,
		CommentID:  commentID,
		Content:    content,
	}
}

// GetNotifications returns the newest notifications for userID with actor profiles.
func (s *NotificationService) GetNotifications(ctx context.Context, userID string) ([]models.NotificationWithActor, error) {
	list, err := s.notifications.ListByUser(ctx, userID, maxNotifications)
	if err != nil {
		return nil, storageErr(err)
	}

	actorIDs := make([]string, 0, len(list))
	for _, n := range list {
		actorIDs = append(actorIDs, n.FromUserID)
	}
	actors, err := s.users.GetByIDs(ctx, actorIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]models.NotificationWithActor, len(list))
	for i, n := range list {
		actor := actors[n.FromUserID]
		out[i] = models.NotificationWithActor{Notification: n, FromUser: actor.ToCompact()}
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	return count, storageErr(err)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uint, userID string) error {
	ok, err := s.notifications.MarkAsRead(ctx, id, userID)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return models.NewNotFoundError("notification", id)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, userID)
	return n, storageErr(err)
}

// Push sends a committed notification to its recipient. Nil is ignored.
func (s *NotificationService) Push(ctx context.Context, n *models.Notification) bool {
	if n == nil {
		return false
	}
	payload := models.NotificationWithActor{Notification: *n}
	if actor, err := s.users.GetByID(ctx, n.FromUserID); err == nil {
		payload.FromUser = actor.ToCompact()
	} else {
		logger.Ctx(ctx).Warn().Err(err).Str("user_id", n.FromUserID).Msg("notification actor lookup failed")
	}
	return s.pusher.SendTo(ctx, n.UserID, realtime.Event{Type: realtime.EventNewNotification, Data: payload})
}

// Forward relays a client-supplied notification envelope to userID without persisting it.
func (s *NotificationService) Forward(ctx context.Context, userID string, data interface{}) bool {
	return s.pusher.SendTo(ctx, userID, realtime.Event{Type: realtime.EventNewNotification, Data: data})
}
