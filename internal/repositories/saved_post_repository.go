package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for saved post data operations
type SavedPostRepository interface {
	WithTx(tx *gorm.DB) SavedPostRepository
	Create(ctx context.Context, userID string, postID uint) error
	Delete(ctx context.Context, userID string, postID uint) (bool, error)
	IsSaved(ctx context.Context, userID string, postID uint) (bool, error)
	SavedPostIDs(ctx context.Context, userID string, postIDs []uint) (map[uint]bool, error)
	DeleteByPost(ctx context.Context, postID uint) error
}

// PostgresSavedPostRepository implements SavedPostRepository with GORM
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

// NewPostgresSavedPostRepository creates a new PostgresSavedPostRepository
func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) WithTx(tx *gorm.DB) SavedPostRepository {
	return &PostgresSavedPostRepository{db: tx}
}

func (r *PostgresSavedPostRepository) Create(ctx context.Context, userID string, postID uint) error {
	return r.db.WithContext(ctx).Create(&models.SavedPost{UserID: userID, PostID: postID}).Error
}

func (r *PostgresSavedPostRepository) Delete(ctx context.Context, userID string, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	return res.RowsAffected > 0, res.Error
}

func (r *PostgresSavedPostRepository) IsSaved(ctx context.Context, userID string, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SavedPostIDs reports which of postIDs userID has saved.
func (r *PostgresSavedPostRepository) SavedPostIDs(ctx context.Context, userID string, postIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PostgresSavedPostRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.SavedPost{}).Error
}
