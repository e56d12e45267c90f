// Package cache remembers which news links were already injected across runs.
package cache

import (
	"context"
	"time"

	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/utils"
)

const keyPrefix = "harvester:seen:"

// SeenCache records processed URLs.
type SeenCache interface {
	IsProcessed(ctx context.Context, url string) (bool, error)
	MarkProcessed(ctx context.Context, url string) error
	ClearProcessed(ctx context.Context) error
	Close() error
}

// New returns a Redis cache when REDIS_URL is set and reachable, otherwise an in-memory one.
func New(cfg *config.Config) SeenCache {
	if cfg.RedisURL == "" {
		return NewMemoryCache(cfg.CacheTTL)
	}
	rc, err := NewRedisClient(cfg)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Redis unavailable, falling back to in-memory seen cache")
		return NewMemoryCache(cfg.CacheTTL)
	}
	return rc
}

func key(url string) string {
	return keyPrefix + utils.Hash(url)
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 30 * 24 * time.Hour
	}
	return ttl
}
