package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"engage_server/core/port/out"

	"github.com/redis/go-redis/v9"
)

// RedisDelivery hands outbound messages to the channel gateway, which
// owns the actual WhatsApp/SMS sending. This engine only enqueues.
type RedisDelivery struct {
	client *redis.Client
}

// NewRedisDelivery creates a new RedisDelivery.
func NewRedisDelivery(client *redis.Client) *RedisDelivery {
	return &RedisDelivery{client: client}
}

// Deliver enqueues one outbound message onto the delivery stream.
func (d *RedisDelivery) Deliver(ctx context.Context, job *out.DeliveryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery job: %w", err)
	}

	err = d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamDelivery,
		ID:     "*",
		Values: map[string]any{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue delivery: %w", err)
	}

	return nil
}

// Ensure RedisDelivery implements out.Delivery
var _ out.Delivery = (*RedisDelivery)(nil)
