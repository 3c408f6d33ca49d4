package realtime

import (
	"context"
	"sync"

	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/pkg/logger"
)

// MemoryRegistry keeps one connection per user in process memory.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[string]Conn)}
}

func (r *MemoryRegistry) Register(userID string, conn Conn) {
	r.mu.Lock()
	prev, ok := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if ok && prev != conn {
		prev.Close()
		return
	}
	if !ok {
		metrics.WebSocketConnections.Inc()
	}
}

func (r *MemoryRegistry) Unregister(userID string, conn Conn) {
	r.remove(userID, conn)
}

func (r *MemoryRegistry) remove(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.conns[userID]; ok && cur == conn {
		delete(r.conns, userID)
		metrics.WebSocketConnections.Dec()
		return true
	}
	return false
}

// evict drops and closes whatever connection is bound to userID.
func (r *MemoryRegistry) evict(userID string) {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	if ok {
		delete(r.conns, userID)
		metrics.WebSocketConnections.Dec()
	}
	r.mu.Unlock()

	if ok {
		conn.Close()
	}
}

func (r *MemoryRegistry) SendTo(ctx context.Context, userID string, event Event) bool {
	payload, err := event.Marshal()
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", event.Type).Msg("realtime: marshal event")
		return false
	}
	delivered := r.deliver(userID, payload)
	recordDelivery(event.Type, delivered)
	return delivered
}

// IsOnline reports whether userID has a connection on this process.
func (r *MemoryRegistry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Shutdown closes every registered connection.
func (r *MemoryRegistry) Shutdown() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]Conn)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
		metrics.WebSocketConnections.Dec()
	}
}

func (r *MemoryRegistry) deliver(userID string, payload []byte) bool {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return conn.Send(payload)
}

func recordDelivery(eventType string, delivered bool) {
	outcome := "dropped"
	if delivered {
		outcome = "delivered"
	}
	metrics.RealtimeDeliveries.WithLabelValues(eventType, outcome).Inc()
}
