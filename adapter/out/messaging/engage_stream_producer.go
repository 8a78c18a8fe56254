// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"engage_server/core/port/out"

	"github.com/redis/go-redis/v9"
)

// Stream names
const (
	StreamEngagementCheck = "engage:engagement_check"
	StreamLearningCycle   = "engage:learning_cycle"
	StreamPatternExtract  = "engage:pattern_extract"
	StreamDelivery        = "engage:delivery"

	// DelayedSetKey is the sorted set holding not-yet-due engagement
	// checks, scored by their due unix timestamp. A poller moves due
	// members onto StreamEngagementCheck.
	DelayedSetKey = "engage:delayed"
)

// RedisProducer implements out.MessageProducer using Redis Streams plus a
// sorted set for delayed jobs.
type RedisProducer struct {
	client *redis.Client
}

// NewRedisProducer creates a new RedisProducer.
func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// PublishEngagementCheck enqueues the job to become due after delay. The
// job sits in the delayed set until the poller promotes it.
func (p *RedisProducer) PublishEngagementCheck(ctx context.Context, job *out.EngagementCheckJob, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	due := float64(time.Now().Add(delay).Unix())
	err = p.client.ZAdd(ctx, DelayedSetKey, redis.Z{
		Score:  due,
		Member: string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule engagement check: %w", err)
	}
	return nil
}

// PublishLearningCycle publishes a learning cycle job.
func (p *RedisProducer) PublishLearningCycle(ctx context.Context, job *out.LearningCycleJob) error {
	return p.publish(ctx, StreamLearningCycle, job)
}

// PublishPatternExtract publishes a pattern extraction job.
func (p *RedisProducer) PublishPatternExtract(ctx context.Context, job *out.PatternExtractJob) error {
	return p.publish(ctx, StreamPatternExtract, job)
}

// publish publishes a job to a stream.
func (p *RedisProducer) publish(ctx context.Context, stream string, job any) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]any{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}

	return nil
}

// Ensure RedisProducer implements out.MessageProducer
var _ out.MessageProducer = (*RedisProducer)(nil)
