package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations.
// Every method addresses its row through a models.LikeTarget.
type LikeRepository interface {
	WithTx(tx *gorm.DB) LikeRepository
	Create(ctx context.Context, userID string, target models.LikeTarget) error
	Delete(ctx context.Context, userID string, target models.LikeTarget) (bool, error)
	Exists(ctx context.Context, userID string, target models.LikeTarget) (bool, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []uint) (map[uint]bool, error)
	DeleteByPost(ctx context.Context, postID uint) error
	DeleteByComments(ctx context.Context, commentIDs []uint) error
}

// PostgresLikeRepository implements LikeRepository with GORM
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &PostgresLikeRepository{db: tx}
}

func (r *PostgresLikeRepository) Create(ctx context.Context, userID string, target models.LikeTarget) error {
	if !target.Valid() {
		return models.ErrInvalidLikeTarget
	}
	return r.db.WithContext(ctx).Create(models.NewLike(userID, target)).Error
}

func (r *PostgresLikeRepository) Delete(ctx context.Context, userID string, target models.LikeTarget) (bool, error) {
	q, err := r.scoped(ctx, userID, target)
	if err != nil {
		return false, err
	}
	res := q.Delete(&models.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *PostgresLikeRepository) Exists(ctx context.Context, userID string, target models.LikeTarget) (bool, error) {
	q, err := r.scoped(ctx, userID, target)
	if err != nil {
		return false, err
	}
	var count int64
	if err := q.Model(&models.Like{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikedPostIDs reports which of postIDs userID has liked.
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
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

func (r *PostgresLikeRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) DeleteByComments(ctx context.Context, commentIDs []uint) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) scoped(ctx context.Context, userID string, target models.LikeTarget) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	switch target.Kind() {
	case models.TargetPost:
		return q.Where("post_id = ?", target.ID()), nil
	case models.TargetComment:
		return q.Where("comment_id = ?", target.ID()), nil
	default:
		return nil, models.ErrInvalidLikeTarget
	}
}
