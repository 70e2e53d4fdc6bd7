package authinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements auth.RateLimiter with a fixed window
// counter per key. Redis unavailability does not lock callers out of
// authentication; the limiter reports the error and the caller decides.
type RedisRateLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, max int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		max:    max,
		window: window,
	}
}

func limitKey(key string) string {
	return fmt.Sprintf("gsauth:ratelimit:%s", key)
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	pipe := l.rdb.Pipeline()
	count := pipe.Incr(ctx, limitKey(key))
	pipe.ExpireNX(ctx, limitKey(key), l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(l.max), nil
}

// NoopRateLimiter allows everything; used when rate limiting is
// disabled in config.
type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}
