package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisDistanceCache(client, time.Hour), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	err := c.PutMany(ctx, "38.7,-9.1", map[string]time.Duration{
		"38.8,-9.2": 12 * time.Minute,
		"38.9,-9.3": 90 * time.Second,
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, "38.7,-9.1", []string{"38.8,-9.2", "38.9,-9.3", "39.0,-9.4", "38.8,-9.2"})
	require.NoError(t, err)

	assert.Equal(t, map[string]time.Duration{
		"38.8,-9.2": 12 * time.Minute,
		"38.9,-9.3": 90 * time.Second,
	}, got)
}

func TestRedisDistanceCacheDirectional(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, "a", map[string]time.Duration{"b": time.Minute}))

	got, err := c.GetMany(ctx, "b", []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, "a", map[string]time.Duration{"b": time.Minute}))
	mr.FastForward(2 * time.Hour)

	got, err := c.GetMany(ctx, "a", []string{"b"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheRejectsEmptyKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetMany(ctx, "", []string{"b"})
	require.Error(t, err)

	err = c.PutMany(ctx, "a", map[string]time.Duration{"": time.Minute})
	require.Error(t, err)
}
