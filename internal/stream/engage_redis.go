package stream

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/redis/go-redis/v9"
)

const readBlock = 5 * time.Second

// RedisStream wraps one consumer group over Redis Streams. All consumers
// created from the same RedisStream share the group, so each entry is
// delivered to exactly one of them.
type RedisStream struct {
	client *redis.Client
	group  string
}

func NewRedisStream(client *redis.Client, group string) *RedisStream {
	return &RedisStream{
		client: client,
		group:  group,
	}
}

// CreateGroup ensures the consumer group exists, creating the stream if
// needed. An already existing group is not an error.
func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Publish appends data to the stream as a single JSON field.
func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": jsonData},
	}).Result()
}

// Consume reads the stream until ctx is cancelled. Entries whose handler
// returns nil are acknowledged; failed entries stay pending for a later
// reclaim.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    readBlock,
		}).Result()

		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				log.Printf("stream %s read error: %v", stream, err)
			}
			continue
		}

		for _, sr := range result {
			for _, msg := range sr.Messages {
				data, ok := msg.Values["data"].(string)
				if !ok {
					// malformed entry, ack so it does not loop forever
					s.client.XAck(ctx, sr.Stream, s.group, msg.ID)
					continue
				}

				if err := handler(msg.ID, []byte(data)); err != nil {
					log.Printf("handler error for %s: %v", msg.ID, err)
					continue
				}

				s.client.XAck(ctx, sr.Stream, s.group, msg.ID)
			}
		}
	}
}

// Pending returns the number of delivered but unacknowledged entries.
func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}
