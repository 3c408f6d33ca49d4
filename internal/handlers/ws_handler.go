package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Inbound frame types.
const (
	frameAuth         = "auth"
	frameMessage      = "message"
	frameNotification = "notification"
)

type inboundFrame struct {
	Type       string          `json:"type"`
	UserID     string          `json:"userId"`
	Token      string          `json:"token,omitempty"`
	ReceiverID string          `json:"receiverId,omitempty"`
	Content    string          `json:"content,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSHandler upgrades /ws connections, authenticates them with the first
// frame and registers them for realtime delivery.
type WSHandler struct {
	upgrader      websocket.Upgrader
	registry      realtime.Registry
	auth          *middleware.Authenticator
	messages      *services.MessageService
	notifications *services.NotificationService
}

func NewWSHandler(registry realtime.Registry, auth *middleware.Authenticator, messages *services.MessageService, notifications *services.NotificationService, origins []string) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		registry:      registry,
		auth:          auth,
		messages:      messages,
		notifications: notifications,
	}
}

// RegisterRoutes mounts /ws. The optional authenticator lets a bearer token
// or session cookie on the upgrade request identify the caller up front.
func (h *WSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleWebSocket, h.auth.Optional())
}

func (h *WSHandler) HandleWebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Ctx(c.Request().Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	ctx := c.Request().Context()
	upgraded, _ := middleware.IdentityFrom(c)
	userID, err := h.handshake(ctx, conn, upgraded)
	if err != nil {
		writeClose(conn, err)
		return nil
	}

	client := realtime.NewClient(userID, conn, h.registry, h.handleFrame)
	h.registry.Register(userID, client)

	sendEvent(client, realtime.Event{Type: realtime.EventAuthOK, Data: map[string]string{"userId": userID}})
	logger.Ctx(ctx).Info().Str(logger.FieldUserID, userID).Msg("websocket registered")

	go client.WritePump()
	client.ReadPump(ctx)
	return nil
}

// handshake waits for the auth frame. A token in the frame is resolved like
// a bearer token; otherwise the identity from the upgrade request must match.
func (h *WSHandler) handshake(ctx context.Context, conn *websocket.Conn, upgraded middleware.Identity) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(realtime.HandshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", models.NewUnauthorizedError("auth frame not received")
	}
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Type != frameAuth {
		return "", models.NewUnauthorizedError("first frame must be auth")
	}

	identity := upgraded
	if frame.Token != "" {
		if identity, err = h.auth.ResolveToken(ctx, frame.Token); err != nil {
			return "", err
		}
	}
	if identity.UserID == "" {
		return "", models.NewUnauthorizedError("missing credentials")
	}
	if frame.UserID != "" && frame.UserID != identity.UserID {
		return "", models.NewForbiddenError("userId does not match credentials")
	}
	return identity.UserID, nil
}

func (h *WSHandler) handleFrame(ctx context.Context, client *realtime.Client, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		sendError(client, models.NewValidationError("invalid frame"))
		return
	}

	switch frame.Type {
	case frameMessage:
		msg, _, err := h.messages.SendMessage(ctx, client.UserID, frame.ReceiverID, frame.Content)
		if err != nil {
			sendError(client, err)
			return
		}
		sendEvent(client, realtime.Event{Type: realtime.EventMessageSent, Data: msg})

	case frameNotification:
		if frame.UserID == "" {
			sendError(client, models.NewValidationError("userId is required"))
			return
		}
		var data interface{} = json.RawMessage(raw)
		if len(frame.Data) > 0 {
			data = frame.Data
		}
		h.notifications.Forward(ctx, frame.UserID, data)

	case frameAuth:
		// Already authenticated.
	default:
		sendError(client, models.NewValidationError("unknown frame type"))
	}
}

func sendEvent(client *realtime.Client, event realtime.Event) {
	payload, err := event.Marshal()
	if err != nil {
		logger.L().Error().Err(err).Str("event", event.Type).Msg("marshal websocket event")
		return
	}
	client.Send(payload)
}

func sendError(client *realtime.Client, err error) {
	sendEvent(client, realtime.Event{Type: realtime.EventError, Data: errorPayload(err)})
}

func errorPayload(err error) wsError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return wsError{Code: appErr.Code, Message: appErr.Message}
	}
	return wsError{Code: models.CodeStorage, Message: "Internal server error"}
}

// writeClose reports err on a connection that never registered, then closes it.
func writeClose(conn *websocket.Conn, err error) {
	payload, _ := realtime.Event{Type: realtime.EventError, Data: errorPayload(err)}.Marshal()
	deadline := time.Now().Add(time.Second)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteMessage(websocket.TextMessage, payload)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"), deadline)
	_ = conn.Close()
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
