package stream

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"engage_server/adapter/in/worker"
	"engage_server/adapter/out/messaging"
)

// streamJobs maps each job stream to the job type its entries carry.
var streamJobs = map[string]worker.JobType{
	messaging.StreamEngagementCheck: worker.JobEngagementCheck,
	messaging.StreamLearningCycle:   worker.JobLearningCycle,
	messaging.StreamPatternExtract:  worker.JobPatternExtract,
}

// Consumer pulls jobs off the streams and hands them to the worker pool.
// An entry is acknowledged once the pool accepts it; the pool owns retry
// and dead lettering from there.
type Consumer struct {
	stream *RedisStream
	pool   *worker.Pool
	name   string
}

func NewConsumer(stream *RedisStream, pool *worker.Pool, name string) *Consumer {
	return &Consumer{
		stream: stream,
		pool:   pool,
		name:   name,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	for s := range streamJobs {
		if err := c.stream.CreateGroup(ctx, s); err != nil {
			log.Printf("failed to create group for %s: %v", s, err)
		}
	}

	for s, jobType := range streamJobs {
		go c.consume(ctx, s, jobType)
	}
}

func (c *Consumer) consume(ctx context.Context, stream string, jobType worker.JobType) {
	c.stream.Consume(ctx, stream, c.name, func(id string, data []byte) error {
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("failed to unmarshal job from %s: %v", stream, err)
			// unparseable entries are acked, retrying cannot fix them
			return nil
		}

		msg := &worker.Message{
			ID:        uuid.New().String(),
			Type:      jobType,
			Payload:   payload,
			CreatedAt: time.Now(),
		}

		if !c.pool.Submit(msg) {
			return fmt.Errorf("pool not accepting jobs")
		}
		return nil
	})
}
