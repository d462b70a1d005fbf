// internal/domain/catalog/cache.go
package catalog

import (
	"context"
	"time"

	"github.com/your-org/bakery-storefront/internal/infrastructure/database/redis"
)

const (
	productsCacheKey   = "catalog:products"
	categoriesCacheKey = "catalog:categories"
)

// Cache holds recently fetched catalog lists
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

// RedisCache stores catalog lists in Redis with a short TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis-backed catalog cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return c.client.GetJSON(ctx, key, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.client.SetJSON(ctx, key, value, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...)
}

type noCache struct{}

func (noCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noCache) Set(context.Context, string, interface{}) error         { return nil }
func (noCache) Invalidate(context.Context, ...string) error            { return nil }
