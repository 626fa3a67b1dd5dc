package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() (*MemoryCache, *time.Time) {
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	c, now := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "revoked_token:abc", true, time.Minute))

	var revoked bool
	found, err := c.Get(ctx, "revoked_token:abc", &revoked)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, revoked)

	*now = now.Add(time.Minute)
	found, err = c.Get(ctx, "revoked_token:abc", &revoked)
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := c.Exists(ctx, "revoked_token:abc")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_IncrementKeepsTTL(t *testing.T) {
	c, now := newTestCache()
	ctx := context.Background()

	n, err := c.Increment(ctx, "login_attempts:leo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, c.Expire(ctx, "login_attempts:leo", 15*time.Minute))

	n, err = c.Increment(ctx, "login_attempts:leo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ttl, err := c.TTL(ctx, "login_attempts:leo")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)

	var attempts int64
	found, err := c.Get(ctx, "login_attempts:leo", &attempts)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), attempts)

	*now = now.Add(15 * time.Minute)
	n, err = c.Increment(ctx, "login_attempts:leo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCache_TTLSemantics(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	ttl, err := c.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl)

	require.NoError(t, c.Set(ctx, "forever", "x", 0))
	ttl, err = c.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, c.Delete(ctx, "forever"))
	exists, err := c.Exists(ctx, "forever")
	require.NoError(t, err)
	assert.False(t, exists)
}
