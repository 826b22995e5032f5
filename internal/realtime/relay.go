package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RelayChannel is the Redis pub/sub channel shared by every instance.
const RelayChannel = "reservations:events"

// RedisRelay fans events out across instances: Publish sends the frame to
// Redis and Run forwards every frame received from Redis to the local hub.
type RedisRelay struct {
	rdb *redis.Client
	hub *Hub
	log *slog.Logger
}

// NewRedisRelay builds a relay feeding hub.
func NewRedisRelay(rdb *redis.Client, hub *Hub, log *slog.Logger) *RedisRelay {
	if log == nil {
		log = slog.Default()
	}
	return &RedisRelay{rdb: rdb, hub: hub, log: log.With("component", "ws-relay")}
}

// Publish sends the event to all instances.  When Redis refuses the frame
// it is still delivered to local clients.
func (r *RedisRelay) Publish(ctx context.Context, name string, payload any) error {
	msg, err := Encode(name, payload)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, RelayChannel, msg).Err(); err != nil {
		r.hub.Broadcast(msg)
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the relay channel until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, RelayChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.hub.Broadcast([]byte(m.Payload))
		}
	}
}
