package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/biffcrash1/image-viewer/cache/memory"
	"github.com/biffcrash1/image-viewer/cache/redis"
	"github.com/biffcrash1/image-viewer/config"
)

// Factory owns the configured cache provider.
type Factory struct {
	provider Provider
}

// NewFactory creates the cache provider selected by config.
func NewFactory(cfg *config.Config) (*Factory, error) {
	var provider Provider
	var err error

	switch cfg.CacheType {
	case "memory", "":
		maxCost := cfg.ThumbnailCacheSizeMB * 1024 * 1024
		if maxCost <= 0 {
			maxCost = 64 * 1024 * 1024
		}
		provider, err = memory.NewMemory(memory.Config{
			NumCounters: 100000,
			MaxCost:     maxCost,
			BufferItems: 64,
			Metrics:     false,
		})
	case "redis":
		provider, err = redis.NewRedis(redis.Config{
			Address:  cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
		})
	default:
		return nil, fmt.Errorf("unsupported cache provider type: %s", cfg.CacheType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache provider: %w", cfg.CacheType, err)
	}

	log.Printf("Cache provider '%s' initialized successfully", provider.Name())
	return &Factory{provider: provider}, nil
}

// GetProvider returns the cache provider.
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close closes the cache provider.
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// Set stores a cache entry.
func (f *Factory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if f.provider == nil {
		return fmt.Errorf("cache provider not initialized")
	}
	return f.provider.Set(ctx, key, value, expiration)
}

// Get loads a cache entry into dest.
func (f *Factory) Get(ctx context.Context, key string, dest interface{}) error {
	if f.provider == nil {
		return fmt.Errorf("cache provider not initialized")
	}
	return f.provider.Get(ctx, key, dest)
}

// Delete removes a cache entry.
func (f *Factory) Delete(ctx context.Context, key string) error {
	if f.provider == nil {
		return fmt.Errorf("cache provider not initialized")
	}
	return f.provider.Delete(ctx, key)
}

// Exists reports whether a cache entry is present.
func (f *Factory) Exists(ctx context.Context, key string) (bool, error) {
	if f.provider == nil {
		return false, fmt.Errorf("cache provider not initialized")
	}
	return f.provider.Exists(ctx, key)
}
