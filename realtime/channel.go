package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"solarena/lifecycle"
)

// RedisChannel carries session events over Redis pub/sub, one Redis
// channel per session and event name. Every server instance can relay
// events for any session.
type RedisChannel struct {
	rdb    *redis.Client
	logger *zap.Logger
}

var _ lifecycle.Channel = (*RedisChannel)(nil)

func NewRedisChannel(rdb *redis.Client, logger *zap.Logger) *RedisChannel {
	return &RedisChannel{rdb: rdb, logger: logger}
}

func channelName(sessionID uint, event string) string {
	return fmt.Sprintf("session:%d:%s", sessionID, event)
}

// Join marks the session as live so stale-session sweeps can tell an
// abandoned lobby from one with connected players.
func (c *RedisChannel) Join(ctx context.Context, sessionID uint) error {
	key := fmt.Sprintf("session:%d:live", sessionID)
	return c.rdb.Set(ctx, key, time.Now().Unix(), 24*time.Hour).Err()
}

func (c *RedisChannel) Publish(ctx context.Context, sessionID uint, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	return c.rdb.Publish(ctx, channelName(sessionID, event), data).Err()
}

func (c *RedisChannel) Subscribe(ctx context.Context, sessionID uint, event string, handler lifecycle.Handler) (func(), error) {
	pubsub := c.rdb.Subscribe(ctx, channelName(sessionID, event))
	// Force the subscription onto the wire before returning so events
	// published right after Subscribe are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			handler([]byte(msg.Payload))
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			c.logger.Warn("closing subscription failed",
				zap.Uint("sessionID", sessionID), zap.String("event", event), zap.Error(err))
		}
	}, nil
}
