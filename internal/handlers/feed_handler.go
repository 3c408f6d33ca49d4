package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed and the caller's saved posts.
type FeedHandler struct {
	posts *services.PostService
}

func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/saved", h.GetSavedPosts)
}

// GetFeed returns posts newest first. ?scope=following limits it to the
// caller and the users they follow.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	offset, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	scope := services.ParseFeedScope(c.QueryParam("scope"))
	posts, err := h.posts.GetFeedPosts(c.Request().Context(), userID, scope, offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, posts)
}

func (h *FeedHandler) GetSavedPosts(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	offset, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetSavedPosts(c.Request().Context(), userID, offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, posts)
}
