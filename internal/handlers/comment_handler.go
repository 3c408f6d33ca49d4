package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetCommentsByPost)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment or, with parent_id, a reply.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.CreateComment(c.Request().Context(), postID, userID, req.Content, req.ParentID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, comment)
}

// GetCommentsByPost lists a post's comments oldest first.
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	postID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	offset, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.ListComments(c.Request().Context(), postID, offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, comments)
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	commentID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.UpdateComment(c.Request().Context(), commentID, userID, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	commentID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.comments.DeleteComment(c.Request().Context(), commentID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
