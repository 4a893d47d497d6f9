// Package notifications provides real-time notification delivery over Redis
// pub/sub and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"chirp/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const userChannelPattern = "notifications:user:*"

// Notifier publishes notification payloads into per-user Redis channels so
// every server instance can push to whichever websockets it holds.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends a notification payload to the user's channel. Without a
// Redis client this is a no-op so the write path never depends on pub/sub.
func (n *Notifier) Publish(ctx context.Context, username string, payload any) error {
	if n.rdb == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		middleware.NotificationPublishes.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := n.rdb.Publish(ctx, UserChannel(username), data).Err(); err != nil {
		middleware.NotificationPublishes.WithLabelValues("error").Inc()
		return err
	}
	middleware.NotificationPublishes.WithLabelValues("ok").Inc()
	return nil
}

// StartPatternSubscriber subscribes to every per-user channel and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(username string) string {
	return "notifications:user:" + username
}
