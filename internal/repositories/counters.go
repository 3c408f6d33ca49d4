package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter names a denormalized count column.
type Counter string

const (
	UserFollowerCount  Counter = "follower_count"
	UserFollowingCount Counter = "following_count"
	UserPostCount      Counter = "post_count"
	PostLikesCount     Counter = "likes_count"
	PostCommentsCount  Counter = "comments_count"
	CommentLikesCount  Counter = "likes_count"
	StoryViewsCount    Counter = "views_count"
)

// counterExpr builds an in-place adjustment that never drops below zero.
func counterExpr(column Counter, delta int64) clause.Expr {
	col := string(column)
	if delta > 0 {
		return gorm.Expr(col+" + ?", delta)
	}
	n := -delta
	return gorm.Expr("CASE WHEN "+col+" > ? THEN "+col+" - ? ELSE 0 END", n, n)
}

// adjustCounter applies delta to column on the row with the given primary key.
func adjustCounter(db *gorm.DB, model interface{}, id interface{}, column Counter, delta int64) error {
	if delta == 0 {
		return nil
	}
	res := db.Model(model).Where("id = ?", id).UpdateColumn(string(column), counterExpr(column, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func page(db *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}
