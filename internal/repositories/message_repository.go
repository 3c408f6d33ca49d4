package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message data operations
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Conversation(ctx context.Context, userA, userB string, offset, limit int) ([]models.Message, error)
	LatestPerParticipant(ctx context.Context, userID string) ([]models.Message, error)
	UnreadCountsBySender(ctx context.Context, receiverID string) (map[string]int64, error)
	MarkAsRead(ctx context.Context, senderID, receiverID string) (int64, error)
}

// PostgresMessageRepository implements MessageRepository with GORM
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Conversation returns messages exchanged between two users in send order.
func (r *PostgresMessageRepository) Conversation(ctx context.Context, userA, userB string, offset, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := page(r.db.WithContext(ctx), offset, limit).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// LatestPerParticipant returns the newest message exchanged with each other participant.
func (r *PostgresMessageRepository) LatestPerParticipant(ctx context.Context, userID string) ([]models.Message, error) {
	db := r.db.WithContext(ctx)

	var ids []uint
	err := db.Raw(`SELECT MAX(id) FROM messages
		WHERE sender_id = ? OR receiver_id = ?
		GROUP BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END`,
		userID, userID, userID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var messages []models.Message
	err = db.Where("id IN ?", ids).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error
	return messages, err
}

// UnreadCountsBySender counts unread messages addressed to receiverID per sender.
func (r *PostgresMessageRepository) UnreadCountsBySender(ctx context.Context, receiverID string) (map[string]int64, error) {
	var rows []struct {
		SenderID string
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.SenderID] = row.Count
	}
	return out, nil
}

// MarkAsRead flags every unread message from senderID to receiverID as read.
func (r *PostgresMessageRepository) MarkAsRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
