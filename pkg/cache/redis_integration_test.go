//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/cache"
	"github.com/dmitrymomot/mwm/pkg/redis"
)

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedis[int](client, "cache-test")
	t.Cleanup(func() { _ = c.Delete(ctx, "n") })

	_, err = c.Get(ctx, "n")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "n", 4, time.Minute))
	v, err := c.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	ttl, err := client.TTL(ctx, "cache-test:n").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, c.Delete(ctx, "n"))
	_, err = c.Get(ctx, "n")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisIncr(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedis[int64](client, "counter-test")
	t.Cleanup(func() { _ = c.Delete(ctx, "n") })

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "n", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	v, err := c.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	ttl, err := client.TTL(ctx, "counter-test:n").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
