package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles direct messages over REST.
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/conversations", h.GetConversations)
	g.GET("/messages/:userId", h.GetConversation)
	g.PUT("/messages/:userId/read", h.MarkAsRead)
}

type sendMessageResponse struct {
	Message   *models.Message `json:"message"`
	Delivered bool            `json:"delivered"`
}

// SendMessage stores a message and pushes it to the receiver when online.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, delivered, err := h.messages.SendMessage(c.Request().Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, sendMessageResponse{Message: msg, Delivered: delivered})
}

func (h *MessageHandler) GetConversations(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	convs, err := h.messages.GetConversations(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, convs)
}

// GetConversation returns the messages with :userId oldest first.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	msgs, err := h.messages.GetConversation(c.Request().Context(), userID, c.Param("userId"), offset, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, msgs)
}

// MarkAsRead marks everything :userId sent the caller as read.
func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.messages.MarkMessagesAsRead(c.Request().Context(), c.Param("userId"), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]int64{"updated": n})
}
