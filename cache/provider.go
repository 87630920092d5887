package cache

import (
	"context"
	"time"
)

// Provider is the cache abstraction all backends implement.
type Provider interface {
	// Set stores a cache entry.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get loads a cache entry into dest.
	Get(ctx context.Context, key string, dest interface{}) error

	// Delete removes a cache entry.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a cache entry is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Close closes the cache backend.
	Close() error

	// Name returns the backend name.
	Name() string
}

// ErrCacheMiss is returned when a key is not present.
var ErrCacheMiss = &cacheMissError{}

type cacheMissError struct{}

func (e *cacheMissError) Error() string {
	return "cache miss"
}

// IsCacheMiss reports whether err is a cache miss.
func IsCacheMiss(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*cacheMissError); ok {
		return true
	}
	// Backend packages carry their own miss sentinels.
	return err.Error() == "cache miss"
}
