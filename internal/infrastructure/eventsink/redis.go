package eventsink

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/crickex/ledger/internal/domain"
)

// RedisSink publishes events to a Redis pub/sub channel consumed by the
// push-notification service.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink creates a new RedisSink.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Publish marshals the event and publishes it to the configured channel.
func (s *RedisSink) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.client.Publish(ctx, s.channel, data).Err()
}
