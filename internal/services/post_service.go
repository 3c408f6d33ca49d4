package services

import (
	"context"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"gorm.io/gorm"
)

// FeedScope selects which posts the feed draws from.
type FeedScope string

const (
	// FeedGlobal is every user's posts, newest first.
	FeedGlobal FeedScope = "global"
	// FeedFollowing is the viewer's own posts and those of users they follow.
	FeedFollowing FeedScope = "following"
)

// ParseFeedScope maps a query value to a scope. Unknown values fall back to global.
func ParseFeedScope(s string) FeedScope {
	if FeedScope(strings.ToLower(s)) == FeedFollowing {
		return FeedFollowing
	}
	return FeedGlobal
}

// PostService owns posts, post likes, saves and the feed.
type PostService struct {
	db            *gorm.DB
	posts         repositories.PostRepository
	users         repositories.UserRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	saves         repositories.SavedPostRepository
	notifications repositories.NotificationRepository
	notifier      *NotificationService
}

func NewPostService(
	db *gorm.DB,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	saves repositories.SavedPostRepository,
	notifications repositories.NotificationRepository,
	notifier *NotificationService,
) *PostService {
	return &PostService{
		db:            db,
		posts:         posts,
		users:         users,
		comments:      comments,
		likes:         likes,
		saves:         saves,
		notifications: notifications,
		notifier:      notifier,
	}
}

func validatePostMedia(media []string, mediaType string) ([]string, error) {
	cleaned := make([]string, 0, len(media))
	for _, m := range media {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		return nil, models.NewValidationError("media is required")
	}
	switch mediaType {
	case models.MediaTypeImage, models.MediaTypeVideo:
		if len(cleaned) != 1 {
			return nil, models.NewValidationError("use media_type carousel for more than one item")
		}
	case models.MediaTypeCarousel:
		if len(cleaned) < 2 {
			return nil, models.NewValidationError("a carousel needs at least two media items")
		}
	case "":
		return nil, models.NewValidationError("media_type is required")
	default:
		return nil, models.NewValidationError("media_type must be one of image, video, carousel")
	}
	return cleaned, nil
}

// CreatePost stores a post and bumps the owner's post count in one transaction.
func (s *PostService) CreatePost(ctx context.Context, userID string, req models.CreatePostRequest) (*models.EnrichedPost, error) {
	media, err := validatePostMedia(req.Media, req.MediaType)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:    userID,
		Media:     media,
		MediaType: req.MediaType,
		Caption:   strings.TrimSpace(req.Caption),
		Location:  strings.TrimSpace(req.Location),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Create(ctx, post); err != nil {
			return storageErr(err)
		}
		return classify(s.users.WithTx(tx).AdjustCounter(ctx, userID, repositories.UserPostCount, 1), "user", userID)
	})
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrich(ctx, userID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint, viewerID string) (*models.EnrichedPost, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, classify(err, "post", postID)
	}
	enriched, err := s.enrich(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// GetFeedPosts returns the newest posts for scope, enriched for viewerID.
func (s *PostService) GetFeedPosts(ctx context.Context, viewerID string, scope FeedScope, offset, limit int) ([]models.EnrichedPost, error) {
	offset, limit = NormalizePage(offset, limit)

	var (
		posts []models.Post
		err   error
	)
	if scope == FeedFollowing {
		posts, err = s.posts.ListForFollower(ctx, viewerID, offset, limit)
	} else {
		posts, err = s.posts.List(ctx, offset, limit)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return s.enrich(ctx, viewerID, posts)
}

func (s *PostService) GetUserPosts(ctx context.Context, ownerID, viewerID string, offset, limit int) ([]models.EnrichedPost, error) {
	offset, limit = NormalizePage(offset, limit)
	if ok, err := s.users.Exists(ctx, ownerID); err != nil {
		return nil, storageErr(err)
	} else if !ok {
		return nil, models.NewNotFoundError("user", ownerID)
	}

	posts, err := s.posts.ListByUser(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return s.enrich(ctx, viewerID, posts)
}

func (s *PostService) GetSavedPosts(ctx context.Context, userID string, offset, limit int) ([]models.EnrichedPost, error) {
	offset, limit = NormalizePage(offset, limit)
	posts, err := s.posts.ListSavedBy(ctx, userID, offset, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return s.enrich(ctx, userID, posts)
}

// enrich attaches author profiles and the viewer's like/save flags.
func (s *PostService) enrich(ctx context.Context, viewerID string, posts []models.Post) ([]models.EnrichedPost, error) {
	out := make([]models.EnrichedPost, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
		postIDs[i] = p.ID
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storageErr(err)
	}
	liked, err := s.likes.LikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, storageErr(err)
	}
	saved, err := s.saves.SavedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	for i, p := range posts {
		author := authors[p.UserID]
		out[i] = models.EnrichedPost{
			Post:     p,
			Author:   author.ToCompact(),
			HasLiked: liked[p.ID],
			HasSaved: saved[p.ID],
		}
	}
	return out, nil
}

func (s *PostService) HasLikedPost(ctx context.Context, userID string, postID uint) (bool, error) {
	liked, err := s.likes.Exists(ctx, userID, models.PostTarget(postID))
	return liked, storageErr(err)
}

// LikePost makes userID like postID. Liking twice is a no-op.
func (s *PostService) LikePost(ctx context.Context, userID string, postID uint) (*LikeState, error) {
	return s.mutatePostLike(ctx, userID, postID, likeSet)
}

// UnlikePost removes userID's like on postID. Unliking twice is a no-op.
func (s *PostService) UnlikePost(ctx context.Context, userID string, postID uint) (*LikeState, error) {
	return s.mutatePostLike(ctx, userID, postID, likeUnset)
}

// TogglePostLike flips userID's like on postID.
func (s *PostService) TogglePostLike(ctx context.Context, userID string, postID uint) (*LikeState, error) {
	return s.mutatePostLike(ctx, userID, postID, likeToggle)
}

func (s *PostService) mutatePostLike(ctx context.Context, userID string, postID uint, mode likeMode) (*LikeState, error) {
	var (
		state LikeState
		notif *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		post, err := posts.GetByID(ctx, postID)
		if err != nil {
			return classify(err, "post", postID)
		}

		liked, delta, err := applyLike(ctx, s.likes.WithTx(tx), userID, models.PostTarget(postID), mode, func(d int64) error {
			return posts.AdjustCounter(ctx, postID, repositories.PostLikesCount, d)
		})
		if err != nil {
			return err
		}
		state = LikeState{Liked: liked, LikesCount: post.LikesCount + delta}
		if state.LikesCount < 0 {
			state.LikesCount = 0
		}

		if delta > 0 {
			notif = newNotification(models.NotificationLike, post.UserID, userID, &post.ID, nil, nil)
			if notif != nil {
				return storageErr(s.notifications.WithTx(tx).Create(ctx, notif))
			}
		}
		return nil
	})
	if lostRace(err) {
		return s.currentPostLike(ctx, userID, postID)
	}
	if err != nil {
		return nil, classify(err, "post", postID)
	}

	s.notifier.Push(ctx, notif)
	return &state, nil
}

func (s *PostService) currentPostLike(ctx context.Context, userID string, postID uint) (*LikeState, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, classify(err, "post", postID)
	}
	liked, err := s.likes.Exists(ctx, userID, models.PostTarget(postID))
	if err != nil {
		return nil, storageErr(err)
	}
	return &LikeState{Liked: liked, LikesCount: post.LikesCount}, nil
}

// SavePost bookmarks postID for userID. Saving twice is a no-op.
func (s *PostService) SavePost(ctx context.Context, userID string, postID uint) (*SaveState, error) {
	return s.mutateSave(ctx, userID, postID, likeSet)
}

// UnsavePost removes the bookmark. Unsaving twice is a no-op.
func (s *PostService) UnsavePost(ctx context.Context, userID string, postID uint) (*SaveState, error) {
	return s.mutateSave(ctx, userID, postID, likeUnset)
}

// TogglePostSave flips userID's bookmark on postID.
func (s *PostService) TogglePostSave(ctx context.Context, userID string, postID uint) (*SaveState, error) {
	return s.mutateSave(ctx, userID, postID, likeToggle)
}

func (s *PostService) mutateSave(ctx context.Context, userID string, postID uint, mode likeMode) (*SaveState, error) {
	var state SaveState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.posts.WithTx(tx).GetByID(ctx, postID); err != nil {
			return classify(err, "post", postID)
		}
		saves := s.saves.WithTx(tx)
		saved, err := saves.IsSaved(ctx, userID, postID)
		if err != nil {
			return err
		}

		want := saved
		switch mode {
		case likeSet:
			want = true
		case likeUnset:
			want = false
		case likeToggle:
			want = !saved
		}

		switch {
		case want && !saved:
			err = saves.Create(ctx, userID, postID)
		case !want && saved:
			_, err = saves.Delete(ctx, userID, postID)
		}
		state.Saved = want
		return err
	})
	if lostRace(err) {
		return &SaveState{Saved: true}, nil
	}
	if err != nil {
		return nil, classify(err, "post", postID)
	}
	return &state, nil
}

// DeletePost removes a post owned by requesterID together with its comments,
// likes, saves and notifications, and decrements the owner's post count.
func (s *PostService) DeletePost(ctx context.Context, postID uint, requesterID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		post, err := posts.GetByID(ctx, postID)
		if err != nil {
			return classify(err, "post", postID)
		}
		if post.UserID != requesterID {
			return models.NewForbiddenError("only the owner can delete this post")
		}

		commentIDs, err := s.comments.WithTx(tx).DeleteByPost(ctx, postID)
		if err != nil {
			return storageErr(err)
		}
		likes := s.likes.WithTx(tx)
		if err := likes.DeleteByComments(ctx, commentIDs); err != nil {
			return storageErr(err)
		}
		if err := likes.DeleteByPost(ctx, postID); err != nil {
			return storageErr(err)
		}
		if err := s.saves.WithTx(tx).DeleteByPost(ctx, postID); err != nil {
			return storageErr(err)
		}
		notifications := s.notifications.WithTx(tx)
		if err := notifications.DeleteByComments(ctx, commentIDs); err != nil {
			return storageErr(err)
		}
		if err := notifications.DeleteByPost(ctx, postID); err != nil {
			return storageErr(err)
		}
		if err := posts.Delete(ctx, postID); err != nil {
			return classify(err, "post", postID)
		}
		return classify(s.users.WithTx(tx).AdjustCounter(ctx, post.UserID, repositories.UserPostCount, -1), "user", post.UserID)
	})
}
