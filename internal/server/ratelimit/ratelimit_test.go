package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	l := New(store, cfg)
	t.Cleanup(l.Stop)
	return l, store
}

func TestAllow_AnonymousQuotaExhaustion(t *testing.T) {
	l, _ := newTestLimiter(t, Config{AnonDaily: 3, UserDaily: 25})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "203.0.113.7", TierAnonymous)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "203.0.113.7", TierAnonymous)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestAllow_AuthenticatedTierHasOwnQuota(t *testing.T) {
	l, _ := newTestLimiter(t, Config{AnonDaily: 1, UserDaily: 5})
	ctx := context.Background()

	// Exhaust the anonymous quota for a key.
	_, err := l.Allow(ctx, "k", TierAnonymous)
	require.NoError(t, err)
	res, err := l.Allow(ctx, "k", TierAnonymous)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// The same key string under the authenticated tier is independent.
	res, err = l.Allow(ctx, "k", TierAuthenticated)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
}

func TestAllow_WindowExpiryResetsCounter(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	l := New(store, Config{AnonDaily: 2})
	defer l.Stop()
	ctx := context.Background()

	l.Allow(ctx, "ip1", TierAnonymous)
	l.Allow(ctx, "ip1", TierAnonymous)
	res, _ := l.Allow(ctx, "ip1", TierAnonymous)
	assert.False(t, res.Allowed)

	// Advance past the 24h window: the next request succeeds and the
	// counter restarts at 1.
	now = now.Add(Window + time.Minute)
	res, err := l.Allow(ctx, "ip1", TierAnonymous)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestBypass(t *testing.T) {
	l, _ := newTestLimiter(t, Config{AnonDaily: 1, BypassKey: "secret-key"})

	r := httptest.NewRequest("POST", "/demo-slides", nil)
	assert.False(t, l.Bypass(r))

	r.Header.Set("X-RateLimit-Bypass", "wrong")
	assert.False(t, l.Bypass(r))

	r.Header.Set("X-RateLimit-Bypass", "secret-key")
	assert.True(t, l.Bypass(r))
}

func TestBypass_DisabledWithoutKey(t *testing.T) {
	l, _ := newTestLimiter(t, Config{AnonDaily: 1})
	r := httptest.NewRequest("POST", "/demo-slides", nil)
	r.Header.Set("X-RateLimit-Bypass", "")
	assert.False(t, l.Bypass(r))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	assert.Equal(t, "unknown", ClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1, 10.0.0.2")
	assert.Equal(t, "203.0.113.9", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "  203.0.113.10  ")
	assert.Equal(t, "203.0.113.10", ClientIP(r))
}

func TestMemoryStore_SweepRemovesExpiredEntries(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Incr(ctx, "a", Window)
	store.Incr(ctx, "b", Window)
	assert.Equal(t, 2, store.len())

	now = now.Add(Window + time.Second)
	store.sweep()
	assert.Equal(t, 0, store.len())
}

func TestAllow_ZeroLimitDisablesTier(t *testing.T) {
	l, _ := newTestLimiter(t, Config{AnonDaily: 0, UserDaily: 5})
	res, err := l.Allow(context.Background(), "ip", TierAnonymous)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
