package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type likeFunc func(ctx context.Context, userID string, id uint) (*services.LikeState, error)

// LikeHandler handles likes on posts and comments. POST toggles, PUT likes
// and DELETE unlikes; PUT and DELETE are idempotent.
type LikeHandler struct {
	posts    *services.PostService
	comments *services.CommentService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *services.PostService, comments *services.CommentService) *LikeHandler {
	return &LikeHandler{posts: posts, comments: comments}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.like(h.posts.TogglePostLike))
	g.PUT("/posts/:id/like", h.like(h.posts.LikePost))
	g.DELETE("/posts/:id/like", h.like(h.posts.UnlikePost))

	g.POST("/comments/:id/like", h.like(h.comments.ToggleCommentLike))
	g.PUT("/comments/:id/like", h.like(h.comments.LikeComment))
	g.DELETE("/comments/:id/like", h.like(h.comments.UnlikeComment))
}

func (h *LikeHandler) like(fn likeFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		id, err := uintParam(c, "id")
		if err != nil {
			return err
		}
		state, err := fn(c.Request().Context(), userID, id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, state)
	}
}
