package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_IncrCounts(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		count, resetAt, err := store.Incr(ctx, "ip:1.2.3.4", Window)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.WithinDuration(t, time.Now().Add(Window), resetAt, 5*time.Second)
	}
}

func TestRedisStore_WindowExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	count, _, err := store.Incr(ctx, "ip:k", Window)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, _, err = store.Incr(ctx, "ip:k", Window)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mr.FastForward(Window + time.Second)

	count, _, err = store.Incr(ctx, "ip:k", Window)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "expired window must restart the counter")
}

func TestRedisStore_KeysAreIsolated(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	store.Incr(ctx, "ip:a", Window)
	count, _, err := store.Incr(ctx, "ip:b", Window)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLimiter_OverRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	l := New(store, Config{AnonDaily: 2, UserDaily: 10})
	defer l.Stop()
	ctx := context.Background()

	res, err := l.Allow(ctx, "9.9.9.9", TierAnonymous)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, _ = l.Allow(ctx, "9.9.9.9", TierAnonymous)
	assert.True(t, res.Allowed)

	res, _ = l.Allow(ctx, "9.9.9.9", TierAnonymous)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}
