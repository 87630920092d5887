package memory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
)

// ErrCacheMiss is returned when a key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Memory is the ristretto-backed in-process cache.
type Memory struct {
	client *ristretto.Cache
}

// Config configures the memory cache.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// NewMemory creates a new memory cache provider.
func NewMemory(config Config) (*Memory, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
		Metrics:     config.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Memory{
		client: client,
	}, nil
}

// Set stores a cache entry. Byte slices are costed by length.
func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	size := int64(1)
	if data, ok := value.([]byte); ok {
		size = int64(len(data))
	}

	set := m.client.SetWithTTL(key, value, size, expiration)
	if set {
		// Wait for the value to be applied.
		m.client.Wait()
	}
	return nil
}

// Get loads a cache entry into dest.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := m.client.Get(key)
	if !found {
		return ErrCacheMiss
	}

	switch dest := dest.(type) {
	case *[]byte:
		if data, ok := value.([]byte); ok {
			*dest = data
		} else {
			jsonData, err := json.Marshal(value)
			if err != nil {
				return ErrCacheMiss
			}
			*dest = jsonData
		}
	default:
		var data []byte
		if byteData, ok := value.([]byte); ok {
			data = byteData
		} else {
			jsonData, err := json.Marshal(value)
			if err != nil {
				return ErrCacheMiss
			}
			data = jsonData
		}

		if err := json.Unmarshal(data, dest); err != nil {
			return ErrCacheMiss
		}
	}

	return nil
}

// Delete removes a cache entry.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.client.Del(key)
	return nil
}

// Exists reports whether a cache entry is present.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, found := m.client.Get(key)
	return found, nil
}

// Close closes the cache.
func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

// Name returns the backend name.
func (m *Memory) Name() string {
	return "memory"
}
