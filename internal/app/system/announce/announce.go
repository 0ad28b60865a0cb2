// internal/app/system/announce/announce.go
package announce

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the pub/sub channel record store changes are announced on.
const Channel = "guardduty:changes"

// Bus announces record store changes between processes over Redis pub/sub.
// Each Bus has an origin id; its own announcements are not delivered back to
// it.
type Bus struct {
	client  *redis.Client
	origin  string
	channel string
	log     *zap.Logger
}

func New(client *redis.Client, logger *zap.Logger) *Bus {
	return &Bus{
		client:  client,
		origin:  uuid.NewString(),
		channel: Channel,
		log:     logger,
	}
}

// Origin identifies this process on the channel.
func (b *Bus) Origin() string { return b.origin }

// Announce publishes a change notice.
func (b *Bus) Announce(ctx context.Context) error {
	if err := b.client.Publish(ctx, b.channel, b.origin).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Changes subscribes to the channel and signals every notice published by
// another origin. The channel is closed when ctx ends.
func (b *Bus) Changes(ctx context.Context) (<-chan struct{}, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan struct{}, 1)
	msgs := sub.Channel()
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg.Payload == b.origin {
					continue
				}
				b.log.Debug("record store change announced", zap.String("origin", msg.Payload))
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
