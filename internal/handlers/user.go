package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	social *services.SocialService
	posts  *services.PostService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(social *services.SocialService, posts *services.PostService) *UserHandler {
	return &UserHandler{social: social, posts: posts}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/suggested", h.SuggestedUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// GetUser returns another user's profile with the caller's follow status.
func (h *UserHandler) GetUser(c echo.Context) error {
	viewerID, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.social.GetProfile(c.Request().Context(), c.Param("id"), viewerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.social.GetProfile(c.Request().Context(), userID, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.social.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// SearchUsers searches users by username or name with ?q=
func (h *UserHandler) SearchUsers(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.social.SearchUsers(c.Request().Context(), c.QueryParam("q"), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

func (h *UserHandler) SuggestedUsers(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.social.GetSuggestedUsers(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

func (h *UserHandler) GetUserPosts(c echo.Context) error {
	viewerID, err := currentUser(c)
	if err != nil {
		return err
	}
	offset, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetUserPosts(c.Request().Context(), c.Param("id"), viewerID, offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, posts)
}
