package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides an abstraction over caching operations.
// This interface allows services to use caching without depending directly on Redis.
type Cache interface {
	// Get retrieves a value by key
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with an optional TTL (0 = no expiration)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// SetNX sets a key only if it doesn't exist (returns true if set, false if already exists)
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	// Delete removes a key
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis-backed cache
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// NoOpCache is a cache implementation that does nothing (for when caching is disabled)
type NoOpCache struct{}

// NewNoOpCache creates a cache that performs no operations
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) (string, error) {
	return "", redis.Nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (c *NoOpCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}
