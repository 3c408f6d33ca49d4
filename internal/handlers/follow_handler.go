package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles the follow graph.
type FollowHandler struct {
	social *services.SocialService
}

func NewFollowHandler(social *services.SocialService) *FollowHandler {
	return &FollowHandler{social: social}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser makes the caller follow :id.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.social.FollowUser(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, map[string]bool{"following": true})
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.social.UnfollowUser(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]bool{"following": false})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	offset, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	users, err := h.social.ListFollowers(c.Request().Context(), c.Param("id"), offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	offset, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	users, err := h.social.ListFollowing(c.Request().Context(), c.Param("id"), offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}
