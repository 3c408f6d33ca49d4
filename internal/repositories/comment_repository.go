package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	DeleteThread(ctx context.Context, id uint) ([]uint, error)
	DeleteByPost(ctx context.Context, postID uint) ([]uint, error)
	AdjustCounter(ctx context.Context, id uint, column Counter, delta int64) error
}

// PostgresCommentRepository implements CommentRepository with GORM
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &PostgresCommentRepository{db: tx}
}

func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first.
func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := page(r.db.WithContext(ctx), offset, limit).
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteThread removes a comment and every reply beneath it and returns the removed ids.
func (r *PostgresCommentRepository) DeleteThread(ctx context.Context, id uint) ([]uint, error) {
	db := r.db.WithContext(ctx)

	ids := []uint{id}
	frontier := []uint{id}
	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}

	res := db.Where("id IN ?", ids).Delete(&models.Comment{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return ids, nil
}

// DeleteByPost removes every comment on a post and returns the removed ids.
func (r *PostgresCommentRepository) DeleteByPost(ctx context.Context, postID uint) ([]uint, error) {
	db := r.db.WithContext(ctx)

	var ids []uint
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := db.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresCommentRepository) AdjustCounter(ctx context.Context, id uint, column Counter, delta int64) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Comment{}, id, column, delta)
}
