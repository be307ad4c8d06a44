package config

import (
	"context"
	"fmt"

	"github.com/matzehuels/stagegraph/pkg/cache"
)

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.Redis)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	}
}
