package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	stories *services.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *services.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetActiveStories)
	g.POST("/stories", h.CreateStory)
	g.GET("/users/:id/stories", h.GetUserStories)
	g.POST("/stories/:id/view", h.ViewStory)
	g.GET("/stories/:id/viewers", h.GetViewers)
	g.DELETE("/stories/:id", h.DeleteStory)
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateStoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	story, err := h.stories.CreateStory(c.Request().Context(), userID, req.MediaURL, req.MediaType)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, story)
}

// GetActiveStories returns active stories grouped by author.
func (h *StoryHandler) GetActiveStories(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	groups, err := h.stories.GetActiveStories(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, groups)
}

func (h *StoryHandler) GetUserStories(c echo.Context) error {
	stories, err := h.stories.GetUserStories(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stories)
}

// ViewStory records a view. Repeat views are accepted and not counted.
func (h *StoryHandler) ViewStory(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	storyID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.stories.ViewStory(c.Request().Context(), storyID, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result)
}

func (h *StoryHandler) GetViewers(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	storyID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	viewers, err := h.stories.ListStoryViewers(c.Request().Context(), storyID, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, viewers)
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	storyID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.stories.DeleteStory(c.Request().Context(), storyID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
