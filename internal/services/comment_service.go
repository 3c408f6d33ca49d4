package services

import (
	"context"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"gorm.io/gorm"
)

// CommentService owns comments and comment likes.
type CommentService struct {
	db            *gorm.DB
	comments      repositories.CommentRepository
	posts         repositories.PostRepository
	users         repositories.UserRepository
	likes         repositories.LikeRepository
	notifications repositories.NotificationRepository
	notifier      *NotificationService
}

func NewCommentService(
	db *gorm.DB,
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	likes repositories.LikeRepository,
	notifications repositories.NotificationRepository,
	notifier *NotificationService,
) *CommentService {
	return &CommentService{
		db:            db,
		comments:      comments,
		posts:         posts,
		users:         users,
		likes:         likes,
		notifications: notifications,
		notifier:      notifier,
	}
}

func cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("comment content cannot be empty")
	}
	return content, nil
}

// CreateComment adds a comment (or a reply when parentID is set), bumps the
// post's comment count and notifies the post owner.
func (s *CommentService) CreateComment(ctx context.Context, postID uint, userID, content string, parentID *uint) (*models.CommentWithAuthor, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: content, ParentID: parentID}
	var notif *models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		post, err := posts.GetByID(ctx, postID)
		if err != nil {
			return classify(err, "post", postID)
		}

		comments := s.comments.WithTx(tx)
		if parentID != nil {
			parent, err := comments.GetByID(ctx, *parentID)
			if err != nil {
				return classify(err, "comment", *parentID)
			}
			if parent.PostID != postID {
				return models.NewValidationError("parent comment belongs to a different post")
			}
		}

		if err := comments.Create(ctx, comment); err != nil {
			return storageErr(err)
		}
		if err := posts.AdjustCounter(ctx, postID, repositories.PostCommentsCount, 1); err != nil {
			return classify(err, "post", postID)
		}

		notif = newNotification(models.NotificationComment, post.UserID, userID, &post.ID, &comment.ID, &comment.Content)
		if notif != nil {
			return storageErr(s.notifications.WithTx(tx).Create(ctx, notif))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Push(ctx, notif)
	return s.withAuthor(ctx, comment)
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, offset, limit int) ([]models.CommentWithAuthor, error) {
	offset, limit = NormalizePage(offset, limit)
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, classify(err, "post", postID)
	}

	comments, err := s.comments.ListByPost(ctx, postID, offset, limit)
	if err != nil {
		return nil, storageErr(err)
	}

	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]models.CommentWithAuthor, len(comments))
	for i, c := range comments {
		author := authors[c.UserID]
		out[i] = models.CommentWithAuthor{Comment: c, Author: author.ToCompact()}
	}
	return out, nil
}

// UpdateComment edits a comment's content. Only its author may edit it.
func (s *CommentService) UpdateComment(ctx context.Context, commentID uint, requesterID, content string) (*models.CommentWithAuthor, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, classify(err, "comment", commentID)
	}
	if comment.UserID != requesterID {
		return nil, models.NewForbiddenError("only the author can edit this comment")
	}
	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, classify(err, "comment", commentID)
	}
	comment.Content = content
	return s.withAuthor(ctx, comment)
}

// DeleteComment removes a comment and its replies. The comment author and
// the post owner may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, requesterID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.comments.WithTx(tx)
		comment, err := comments.GetByID(ctx, commentID)
		if err != nil {
			return classify(err, "comment", commentID)
		}

		posts := s.posts.WithTx(tx)
		post, err := posts.GetByID(ctx, comment.PostID)
		if err != nil {
			return classify(err, "post", comment.PostID)
		}
		if comment.UserID != requesterID && post.UserID != requesterID {
			return models.NewForbiddenError("only the author or the post owner can delete this comment")
		}

		removed, err := comments.DeleteThread(ctx, commentID)
		if err != nil {
			return classify(err, "comment", commentID)
		}
		if err := s.likes.WithTx(tx).DeleteByComments(ctx, removed); err != nil {
			return storageErr(err)
		}
		if err := s.notifications.WithTx(tx).DeleteByComments(ctx, removed); err != nil {
			return storageErr(err)
		}
		return classify(posts.AdjustCounter(ctx, post.ID, repositories.PostCommentsCount, -int64(len(removed))), "post", post.ID)
	})
}

// LikeComment makes userID like commentID. Liking twice is a no-op.
func (s *CommentService) LikeComment(ctx context.Context, userID string, commentID uint) (*LikeState, error) {
	return s.mutateCommentLike(ctx, userID, commentID, likeSet)
}

// UnlikeComment removes userID's like on commentID. Unliking twice is a no-op.
func (s *CommentService) UnlikeComment(ctx context.Context, userID string, commentID uint) (*LikeState, error) {
	return s.mutateCommentLike(ctx, userID, commentID, likeUnset)
}

// ToggleCommentLike flips userID's like on commentID.
func (s *CommentService) ToggleCommentLike(ctx context.Context, userID string, commentID uint) (*LikeState, error) {
	return s.mutateCommentLike(ctx, userID, commentID, likeToggle)
}

func (s *CommentService) mutateCommentLike(ctx context.Context, userID string, commentID uint, mode likeMode) (*LikeState, error) {
	var (
		state LikeState
		notif *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.comments.WithTx(tx)
		comment, err := comments.GetByID(ctx, commentID)
		if err != nil {
			return classify(err, "comment", commentID)
		}

		liked, delta, err := applyLike(ctx, s.likes.WithTx(tx), userID, models.CommentTarget(commentID), mode, func(d int64) error {
			return comments.AdjustCounter(ctx, commentID, repositories.CommentLikesCount, d)
		})
		if err != nil {
			return err
		}
		state = LikeState{Liked: liked, LikesCount: comment.LikesCount + delta}
		if state.LikesCount < 0 {
			state.LikesCount = 0
		}

		if delta > 0 {
			notif = newNotification(models.NotificationLike, comment.UserID, userID, &comment.PostID, &comment.ID, nil)
			if notif != nil {
				return storageErr(s.notifications.WithTx(tx).Create(ctx, notif))
			}
		}
		return nil
	})
	if lostRace(err) {
		comment, err := s.comments.GetByID(ctx, commentID)
		if err != nil {
			return nil, classify(err, "comment", commentID)
		}
		return &LikeState{Liked: true, LikesCount: comment.LikesCount}, nil
	}
	if err != nil {
		return nil, classify(err, "comment", commentID)
	}

	s.notifier.Push(ctx, notif)
	return &state, nil
}

func (s *CommentService) withAuthor(ctx context.Context, comment *models.Comment) (*models.CommentWithAuthor, error) {
	author, err := s.users.GetByID(ctx, comment.UserID)
	if err != nil {
		return nil, classify(err, "user", comment.UserID)
	}
	return &models.CommentWithAuthor{Comment: *comment, Author: author.ToCompact()}, nil
}
