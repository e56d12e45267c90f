package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/utils"
)

func exerciseCache(t *testing.T, c SeenCache) {
	t.Helper()
	ctx := context.Background()
	url := "https://news.example.com/a"

	seen, err := c.IsProcessed(ctx, url)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.MarkProcessed(ctx, url))
	seen, err = c.IsProcessed(ctx, url)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = c.IsProcessed(ctx, url+"?other")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.ClearProcessed(ctx))
	seen, err = c.IsProcessed(ctx, url)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), CacheTTL: time.Hour}

	c, err := NewRedisClient(cfg)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)

	require.NoError(t, c.MarkProcessed(context.Background(), "https://x"))
	k := keyPrefix + utils.Hash("https://x")
	assert.True(t, mr.Exists(k))
	assert.Equal(t, time.Hour, mr.TTL(k))

	mr.FastForward(2 * time.Hour)
	seen, err := c.IsProcessed(context.Background(), "https://x")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(&config.Config{RedisURL: "://bad"})
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	c, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	mr.Close()

	_, err = c.IsProcessed(context.Background(), "https://x")
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache(time.Hour))

	now := time.Unix(1700000000, 0)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }
	require.NoError(t, c.MarkProcessed(context.Background(), "https://x"))
	now = now.Add(2 * time.Minute)
	seen, _ := c.IsProcessed(context.Background(), "https://x")
	assert.False(t, seen)
}

func TestNewFallsBackToMemory(t *testing.T) {
	assert.IsType(t, &MemoryCache{}, New(&config.Config{}))
	assert.IsType(t, &MemoryCache{}, New(&config.Config{RedisURL: "redis://127.0.0.1:1"}))

	mr := miniredis.RunT(t)
	c := New(&config.Config{RedisURL: "redis://" + mr.Addr()})
	defer c.Close()
	assert.IsType(t, &RedisClient{}, c)
}
