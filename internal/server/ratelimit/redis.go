package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares fixed-window counters across instances using atomic
// INCR with a window-length expiry. Selected when REDIS_ADDR is configured.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Incr implements Store. The expiry is set only when the key is created, so
// the window is fixed from the first request.
func (r *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	full := "ratelimit:" + key

	count, err := r.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit incr failed: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, full, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}

	ttl, err := r.client.TTL(ctx, full).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}

// Close releases the redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
