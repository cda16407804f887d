package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Publisher delivers activity events to the message queue.
type Publisher interface {
	Publish(ctx context.Context, event domain.ActivityEvent) error
}

// RedisPublisher appends JSON payloads to a Redis list consumed as a FIFO queue.
type RedisPublisher struct {
	client redis.Cmdable
	queue  string
}

// NewRedisPublisher builds a publisher for the named queue.
func NewRedisPublisher(client redis.Cmdable, queue string) *RedisPublisher {
	return &RedisPublisher{client: client, queue: queue}
}

// Publish encodes event as {"user_id":..,"action":..} and pushes it onto the queue tail.
func (p *RedisPublisher) Publish(ctx context.Context, event domain.ActivityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.RPush(ctx, p.queue, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	return nil
}
