package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	presenceKey       = "realtime:presence"
	nodeChannelPrefix = "realtime:node:"
)

// claimScript points a user's presence at this node and returns the node it replaced.
var claimScript = redis.NewScript(`
local prev = redis.call("HGET", KEYS[1], ARGV[1])
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return prev
`)

// releaseScript deletes a presence entry only while it still points at this node.
var releaseScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call("HDEL", KEYS[1], ARGV[1])
end
return 0
`)

// envelope is published on a node channel. Revoke asks the node to drop its
// connection for UserID because the user registered elsewhere.
type envelope struct {
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Revoke  bool            `json:"revoke,omitempty"`
}

// RedisRegistry shares presence across server processes.
// Connections stay local; a Redis hash maps each user to the node holding
// their connection and events for remote users are published on that node's channel.
type RedisRegistry struct {
	// claimMu orders local registration and presence claims against revokes.
	claimMu sync.Mutex
	local   *MemoryRegistry
	rdb     *redis.Client
	nodeID  string
}

func NewRedisRegistry(rdb *redis.Client, nodeID string) *RedisRegistry {
	return &RedisRegistry{
		local:  NewMemoryRegistry(),
		rdb:    rdb,
		nodeID: nodeID,
	}
}

func nodeChannel(nodeID string) string {
	return nodeChannelPrefix + nodeID
}

func (r *RedisRegistry) Register(userID string, conn Conn) {
	ctx := context.Background()
	r.claimMu.Lock()
	r.local.Register(userID, conn)
	prev, err := claimScript.Run(ctx, r.rdb, []string{presenceKey}, userID, r.nodeID).Text()
	r.claimMu.Unlock()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.L().Error().Err(err).Str("user_id", userID).Msg("realtime: failed to record presence")
		return
	}
	if prev == "" || prev == r.nodeID {
		return
	}

	msg, err := json.Marshal(envelope{UserID: userID, Revoke: true})
	if err != nil {
		return
	}
	if err := r.rdb.Publish(ctx, nodeChannel(prev), msg).Err(); err != nil {
		logger.L().Error().Err(err).Str("node", prev).Str("user_id", userID).Msg("realtime: failed to revoke previous connection")
	}
}

func (r *RedisRegistry) Unregister(userID string, conn Conn) {
	if !r.local.remove(userID, conn) {
		return
	}
	if err := releaseScript.Run(context.Background(), r.rdb, []string{presenceKey}, userID, r.nodeID).Err(); err != nil {
		logger.L().Error().Err(err).Str("user_id", userID).Msg("realtime: failed to clear presence")
	}
}

func (r *RedisRegistry) SendTo(ctx context.Context, userID string, event Event) bool {
	l := logger.Ctx(ctx)

	payload, err := event.Marshal()
	if err != nil {
		l.Error().Err(err).Str("event_type", event.Type).Msg("realtime: marshal event")
		return false
	}
	node, err := r.rdb.HGet(ctx, presenceKey, userID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.Error().Err(err).Str("user_id", userID).Msg("realtime: presence lookup failed")
	}
	if err != nil || node == r.nodeID {
		// Without a remote owner only a local connection can take the event.
		delivered := r.local.deliver(userID, payload)
		recordDelivery(event.Type, delivered)
		return delivered
	}

	msg, err := json.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		recordDelivery(event.Type, false)
		return false
	}
	receivers, err := r.rdb.Publish(ctx, nodeChannel(node), msg).Result()
	if err != nil {
		l.Error().Err(err).Str("node", node).Msg("realtime: publish failed")
	}
	delivered := err == nil && receivers > 0
	recordDelivery(event.Type, delivered)
	return delivered
}

// Start subscribes to this node's channel and forwards events to local
// connections until ctx is cancelled. It returns once the subscription is active.
func (r *RedisRegistry) Start(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, nodeChannel(r.nodeID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", nodeChannel(r.nodeID), err)
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.L().Error().Interface("panic", rec).Msg("realtime: subscriber panic")
			}
		}()
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logger.L().Warn().Err(err).Msg("realtime: malformed envelope")
					continue
				}
				if env.Revoke {
					r.evictIfMoved(ctx, env.UserID)
					continue
				}
				r.local.deliver(env.UserID, env.Payload)
			}
		}
	}()
	return nil
}

// evictIfMoved closes the local connection for userID unless presence has
// come back to this node since the revoke was published.
func (r *RedisRegistry) evictIfMoved(ctx context.Context, userID string) {
	r.claimMu.Lock()
	defer r.claimMu.Unlock()

	node, err := r.rdb.HGet(ctx, presenceKey, userID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.L().Warn().Err(err).Str("user_id", userID).Msg("realtime: presence lookup failed")
		return
	}
	if node == r.nodeID {
		return
	}
	r.local.evict(userID)
}

// IsOnline reports whether userID is connected to any node.
func (r *RedisRegistry) IsOnline(ctx context.Context, userID string) (bool, error) {
	return r.rdb.HExists(ctx, presenceKey, userID).Result()
}

// Shutdown closes local connections and clears their presence entries.
func (r *RedisRegistry) Shutdown(ctx context.Context) {
	r.local.mu.RLock()
	users := make([]string, 0, len(r.local.conns))
	for userID := range r.local.conns {
		users = append(users, userID)
	}
	r.local.mu.RUnlock()

	for _, userID := range users {
		_ = releaseScript.Run(ctx, r.rdb, []string{presenceKey}, userID, r.nodeID).Err()
	}
	r.local.Shutdown()
}
