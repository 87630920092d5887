package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Redis is the redis-backed cache provider.
type Redis struct {
	client *redis.Client
}

// Config configures the redis connection.
type Config struct {
	Address  string
	Password string
	DB       int
}

// NewRedis creates a new redis cache provider and verifies the
// connection.
func NewRedis(cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	return &Redis{
		client: client,
	}, nil
}

// Set stores a cache entry. Byte slices are stored raw, everything
// else as JSON.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var data []byte
	if raw, ok := value.([]byte); ok {
		data = raw
	} else {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get loads a cache entry into dest.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	if raw, ok := dest.(*[]byte); ok {
		*raw = data
		return nil
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a cache entry.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Exists reports whether a cache entry is present.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Name returns the backend name.
func (r *Redis) Name() string {
	return "redis"
}
