package repositories

import (
	"context"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations.
// Every read takes the current time and only returns stories with expires_at > now.
type StoryRepository interface {
	WithTx(tx *gorm.DB) StoryRepository
	Create(ctx context.Context, story *models.Story) error
	GetActive(ctx context.Context, id uint, now time.Time) (*models.Story, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Story, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]models.Story, error)
	SeenStoryIDs(ctx context.Context, viewerID string, storyIDs []uint) (map[uint]bool, error)
	CreateView(ctx context.Context, view *models.StoryView) error
	HasViewed(ctx context.Context, storyID uint, viewerID string) (bool, error)
	ListViewers(ctx context.Context, storyID uint) ([]models.User, error)
	IncrementViews(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PostgresStoryRepository implements StoryRepository with GORM
type PostgresStoryRepository struct {
	db *gorm.DB
}

// NewPostgresStoryRepository creates a new PostgresStoryRepository
func NewPostgresStoryRepository(db *gorm.DB) *PostgresStoryRepository {
	return &PostgresStoryRepository{db: db}
}

func (r *PostgresStoryRepository) WithTx(tx *gorm.DB) StoryRepository {
	return &PostgresStoryRepository{db: tx}
}

func (r *PostgresStoryRepository) Create(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *PostgresStoryRepository) GetActive(ctx context.Context, id uint, now time.Time) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, now).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// ListActive returns every active story grouped by author, oldest first within an author.
func (r *PostgresStoryRepository) ListActive(ctx context.Context, now time.Time) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("user_id ASC").Order("created_at ASC").Order("id ASC").
		Find(&stories).Error
	return stories, err
}

func (r *PostgresStoryRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at ASC").Order("id ASC").
		Find(&stories).Error
	return stories, err
}

func (r *PostgresStoryRepository) SeenStoryIDs(ctx context.Context, viewerID string, storyIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(storyIDs))
	if len(storyIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.StoryView{}).
		Where("viewer_id = ? AND story_id IN ?", viewerID, storyIDs).
		Pluck("story_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PostgresStoryRepository) CreateView(ctx context.Context, view *models.StoryView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

func (r *PostgresStoryRepository) HasViewed(ctx context.Context, storyID uint, viewerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StoryView{}).
		Where("story_id = ? AND viewer_id = ?", storyID, viewerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListViewers returns the users who viewed a story, most recent first.
func (r *PostgresStoryRepository) ListViewers(ctx context.Context, storyID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN story_views ON story_views.viewer_id = users.id").
		Where("story_views.story_id = ?", storyID).
		Order("story_views.created_at DESC").Order("story_views.id DESC").
		Find(&users).Error
	return users, err
}

func (r *PostgresStoryRepository) IncrementViews(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Story{}, id, StoryViewsCount, 1)
}

// Delete removes a story together with its views.
func (r *PostgresStoryRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("story_id = ?", id).Delete(&models.StoryView{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Story{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteExpired hard-deletes stories with expires_at <= now and their views.
func (r *PostgresStoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	db := r.db.WithContext(ctx)
	expired := r.db.Model(&models.Story{}).Select("id").Where("expires_at <= ?", now)
	if err := db.Where("story_id IN (?)", expired).Delete(&models.StoryView{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("expires_at <= ?", now).Delete(&models.Story{})
	return res.RowsAffected, res.Error
}
