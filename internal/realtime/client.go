package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16384

	sendBuffer = 256
)

// HandshakeTimeout bounds how long a new connection may take to authenticate.
const HandshakeTimeout = 10 * time.Second

// FrameHandler processes one inbound frame from an authenticated client.
type FrameHandler func(ctx context.Context, c *Client, frame []byte)

// Client is a middleman between the websocket connection and the registry.
type Client struct {
	UserID string

	conn     *websocket.Conn
	registry Registry
	handler  FrameHandler

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(userID string, conn *websocket.Conn, registry Registry, handler FrameHandler) *Client {
	return &Client{
		UserID:   userID,
		conn:     conn,
		registry: registry,
		handler:  handler,
		send:     make(chan []byte, sendBuffer),
	}
}

// Send queues payload without blocking; a full buffer drops it.
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		logger.L().Warn().Str("user_id", c.UserID).Msg("realtime: send buffer full, dropped event")
		return false
	}
}

// Close stops the write pump, which then closes the socket.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames until the connection fails, then unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.registry.Unregister(c.UserID, c)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Warn().Err(err).Str("user_id", c.UserID).Msg("realtime: read pump error")
			}
			return
		}
		if c.handler != nil {
			c.handler(ctx, c, message)
		}
	}
}

// WritePump drains the send buffer to the socket and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
