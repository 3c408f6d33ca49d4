package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// counterSource pairs a denormalized column with the query that recounts it.
type counterSource struct {
	name   string
	table  string
	column Counter
	count  string
}

var counterSources = []counterSource{
	{"user.follower_count", "users", UserFollowerCount, "SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id"},
	{"user.following_count", "users", UserFollowingCount, "SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id"},
	{"user.post_count", "users", UserPostCount, "SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id"},
	{"post.likes_count", "posts", PostLikesCount, "SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id"},
	{"post.comments_count", "posts", PostCommentsCount, "SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id"},
	{"comment.likes_count", "comments", CommentLikesCount, "SELECT COUNT(*) FROM likes WHERE likes.comment_id = comments.id"},
	{"story.views_count", "stories", StoryViewsCount, "SELECT COUNT(*) FROM story_views WHERE story_views.story_id = stories.id"},
}

// CounterRepository recomputes denormalized counters from relationship tables.
type CounterRepository interface {
	// Reconcile rewrites drifted counters and returns rows corrected per counter name.
	Reconcile(ctx context.Context) (map[string]int64, error)
}

// PostgresCounterRepository implements CounterRepository with GORM
type PostgresCounterRepository struct {
	db *gorm.DB
}

// NewPostgresCounterRepository creates a new PostgresCounterRepository
func NewPostgresCounterRepository(db *gorm.DB) *PostgresCounterRepository {
	return &PostgresCounterRepository{db: db}
}

func (r *PostgresCounterRepository) Reconcile(ctx context.Context) (map[string]int64, error) {
	fixed := make(map[string]int64, len(counterSources))
	for _, src := range counterSources {
		sql := fmt.Sprintf("UPDATE %s SET %s = (%s) WHERE %s <> (%s)",
			src.table, src.column, src.count, src.column, src.count)
		res := r.db.WithContext(ctx).Exec(sql)
		if res.Error != nil {
			return fixed, fmt.Errorf("reconcile %s: %w", src.name, res.Error)
		}
		fixed[src.name] = res.RowsAffected
	}
	return fixed, nil
}
