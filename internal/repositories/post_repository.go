package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, offset, limit int) ([]models.Post, error)
	ListForFollower(ctx context.Context, userID string, offset, limit int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Post, error)
	ListSavedBy(ctx context.Context, userID string, offset, limit int) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
	AdjustCounter(ctx context.Context, id uint, column Counter, delta int64) error
}

// PostgresPostRepository implements PostRepository with GORM
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) WithTx(tx *gorm.DB) PostRepository {
	return &PostgresPostRepository{db: tx}
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns the most recent posts from every user.
func (r *PostgresPostRepository) List(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := page(r.newest(ctx), offset, limit).Find(&posts).Error
	return posts, err
}

// ListForFollower returns recent posts by userID and the users they follow.
func (r *PostgresPostRepository) ListForFollower(ctx context.Context, userID string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	following := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	err := page(r.newest(ctx), offset, limit).
		Where("user_id = ? OR user_id IN (?)", userID, following).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := page(r.newest(ctx), offset, limit).Where("user_id = ?", userID).Find(&posts).Error
	return posts, err
}

// ListSavedBy returns posts saved by userID, most recently saved first.
func (r *PostgresPostRepository) ListSavedBy(ctx context.Context, userID string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := page(r.db.WithContext(ctx), offset, limit).
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id").
		Where("saved_posts.user_id = ?", userID).
		Order("saved_posts.created_at DESC").Order("saved_posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) AdjustCounter(ctx context.Context, id uint, column Counter, delta int64) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Post{}, id, column, delta)
}

func (r *PostgresPostRepository) newest(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order("posts.created_at DESC").Order("posts.id DESC")
}
