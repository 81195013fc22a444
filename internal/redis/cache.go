package redisx

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache memoizes analytics results keyed by dataset version. Every operation
// fails open: when Redis is unavailable the caller just recomputes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCache(addr string, ttl time.Duration, log *zap.Logger) *Cache {
	c := redis.NewClient(&redis.Options{Addr: addr})
	return &Cache{client: c, ttl: ttl, log: log}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetClient returns the underlying Redis client, shared with the rate limiter.
func (c *Cache) GetClient() *redis.Client {
	return c.client
}

func (c *Cache) Close() { _ = c.client.Close() }
