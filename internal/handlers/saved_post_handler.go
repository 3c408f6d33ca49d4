package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles bookmarking posts.
type SavedPostHandler struct {
	posts *services.PostService
}

func NewSavedPostHandler(posts *services.PostService) *SavedPostHandler {
	return &SavedPostHandler{posts: posts}
}

func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.save(h.posts.TogglePostSave))
	g.PUT("/posts/:id/save", h.save(h.posts.SavePost))
	g.DELETE("/posts/:id/save", h.save(h.posts.UnsavePost))
}

func (h *SavedPostHandler) save(fn func(ctx context.Context, userID string, postID uint) (*services.SaveState, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		postID, err := uintParam(c, "id")
		if err != nil {
			return err
		}
		state, err := fn(c.Request().Context(), userID, postID)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, state)
	}
}
