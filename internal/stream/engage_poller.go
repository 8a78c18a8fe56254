package stream

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"engage_server/adapter/out/messaging"
)

const (
	pollInterval = 10 * time.Second
	pollBatch    = 100
)

// DelayedPoller promotes due entries from the delayed sorted set onto the
// engagement check stream. Members are scored by their due unix time, so
// one ZRANGEBYSCORE up to "now" yields everything ready to run. A member
// is removed only after it lands on the stream, which makes delivery
// at-least-once.
type DelayedPoller struct {
	client   *redis.Client
	interval time.Duration
}

func NewDelayedPoller(client *redis.Client) *DelayedPoller {
	return &DelayedPoller{
		client:   client,
		interval: pollInterval,
	}
}

func (p *DelayedPoller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *DelayedPoller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.promote(ctx)
		}
	}
}

func (p *DelayedPoller) promote(ctx context.Context) {
	now := strconv.FormatInt(time.Now().Unix(), 10)

	members, err := p.client.ZRangeByScore(ctx, messaging.DelayedSetKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: pollBatch,
	}).Result()
	if err != nil {
		log.Printf("delayed poll error: %v", err)
		return
	}

	for _, member := range members {
		err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: messaging.StreamEngagementCheck,
			Values: map[string]any{"data": member},
		}).Err()
		if err != nil {
			// leave the member in place, the next tick retries it
			log.Printf("failed to promote delayed job: %v", err)
			continue
		}

		if err := p.client.ZRem(ctx, messaging.DelayedSetKey, member).Err(); err != nil {
			log.Printf("failed to remove promoted job: %v", err)
		}
	}
}
