package cache

import (
	"context"
	"time"

	rediscommon "github.com/metahub-labs/platform/common/redis"
)

// RedisCache is a Redis-backed Cache implementation for multi-replica deployments,
// where every replica must observe branch activation and default changes.
type RedisCache struct {
	client *rediscommon.Client
	prefix string
}

// NewRedisCache creates a Redis-backed cache with a key prefix
func NewRedisCache(client *rediscommon.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := c.client.Get(ctx, c.prefix+key)
	if err != nil || !found {
		return nil, false, err
	}
	return []byte(val), true, nil
}

// Set stores a value in Redis with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.SetWithExpiry(ctx, c.prefix+key, string(value), ttl)
}

// Delete removes a value from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Delete(ctx, c.prefix+key)
}

// Close is a no-op; the underlying client is owned by the bootstrap layer
func (c *RedisCache) Close() error {
	return nil
}
