// Package ratelimit provides Redis-backed rate limiting for the API.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter implements sliding window rate limiting using Redis.
// With no Redis client, or on Redis errors, it fails open.
type SlidingWindowLimiter struct {
	redis     *redis.Client
	rate      int           // requests per window
	window    time.Duration // window size
	burstSize int           // allowed burst on top of rate
}

// NewSlidingWindowLimiter creates a limiter allowing requestsPerSecond
// plus burstSize requests per second per key.
func NewSlidingWindowLimiter(redisClient *redis.Client, requestsPerSecond, burstSize int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:     redisClient,
		rate:      requestsPerSecond,
		window:    time.Second,
		burstSize: burstSize,
	}
}

// slidingWindowScript atomically trims the window, counts entries and
// records the request when under the limit. Returns 1 when allowed and
// a negative wait time in milliseconds when limited.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)

	if count < max_requests then
		redis.call('ZADD', key, now, now .. '-' .. math.random())
		redis.call('PEXPIRE', key, window_ms * 2)
		return 1
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		if #oldest > 0 then
			return -(oldest[2] + window_ms - now)
		end
		return 0
	end
`)

// Allow checks whether a request under key is allowed. When limited it
// also returns how long the caller would have to wait.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.redis == nil {
		return true, 0
	}

	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := fmt.Sprintf("engage:ratelimit:%s", key)

	result, err := slidingWindowScript.Run(ctx, l.redis, []string{redisKey},
		now.UnixMilli(),
		windowStart.UnixMilli(),
		l.rate+l.burstSize,
		l.window.Milliseconds(),
	).Int64()

	if err != nil {
		// Redis errors must not take the API down with them.
		return true, 0
	}

	if result == 1 {
		return true, 0
	}

	if result < 0 {
		return false, time.Duration(-result) * time.Millisecond
	}

	return false, l.window
}
