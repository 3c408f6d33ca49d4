package services

import (
	"context"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/repositories"
)

// MessageService persists direct messages and pushes them to online receivers.
// The stored row is the durable record; the push is best-effort.
type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	pusher   Pusher
}

func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, pusher Pusher) *MessageService {
	return &MessageService{messages: messages, users: users, pusher: pusherOrNop(pusher)}
}

// SendMessage stores the message, then tries once to push it to the receiver.
// The returned bool reports whether the push reached a live connection.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, false, models.NewValidationError("message content cannot be empty")
	}
	if senderID == receiverID {
		return nil, false, models.NewValidationError("cannot message yourself")
	}
	if ok, err := s.users.Exists(ctx, receiverID); err != nil {
		return nil, false, storageErr(err)
	} else if !ok {
		return nil, false, models.NewNotFoundError("user", receiverID)
	}

	msg := &models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, false, storageErr(err)
	}

	delivered := s.pusher.SendTo(ctx, receiverID, realtime.Event{Type: realtime.EventNewMessage, Data: msg})
	return msg, delivered, nil
}

// GetConversation returns the messages between two users in send order.
func (s *MessageService) GetConversation(ctx context.Context, userID, otherID string, offset, limit int) ([]models.Message, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	msgs, err := s.messages.Conversation(ctx, userID, otherID, offset, limit)
	return msgs, storageErr(err)
}

// GetConversations lists the latest message with each participant, newest first.
func (s *MessageService) GetConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	latest, err := s.messages.LatestPerParticipant(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	unread, err := s.messages.UnreadCountsBySender(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}

	otherIDs := make([]string, len(latest))
	for i, m := range latest {
		otherIDs[i] = otherParticipant(m, userID)
	}
	users, err := s.users.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]models.Conversation, len(latest))
	for i, m := range latest {
		other := users[otherIDs[i]]
		out[i] = models.Conversation{
			User:        other.ToCompact(),
			LastMessage: m,
			UnreadCount: unread[otherIDs[i]],
		}
	}
	return out, nil
}

// MarkMessagesAsRead flags every message from senderID to receiverID as read.
func (s *MessageService) MarkMessagesAsRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	n, err := s.messages.MarkAsRead(ctx, senderID, receiverID)
	return n, storageErr(err)
}

func otherParticipant(m models.Message, userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
