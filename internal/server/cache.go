package server

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShellCache stores fully static rendered documents. Only routes whose
// render crossed no suspension boundary are eligible: a cached shell must
// need no follow-up rows to be correct.
type ShellCache interface {
	Get(ctx context.Context, route string) (string, bool, error)
	Set(ctx context.Context, route string, document string) error
}

const shellKeyPrefix = "seam:shell:"

// RedisShellCache is the Redis-backed ShellCache.
type RedisShellCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisShellCache connects a shell cache to the Redis instance at addr.
func NewRedisShellCache(addr string, ttl time.Duration) *RedisShellCache {
	return &RedisShellCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get returns the cached document for a route, if present.
func (c *RedisShellCache) Get(ctx context.Context, route string) (string, bool, error) {
	doc, err := c.client.Get(ctx, shellKeyPrefix+route).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("shell cache get %q: %w", route, err)
	}
	return doc, true, nil
}

// Set stores the rendered document for a route.
func (c *RedisShellCache) Set(ctx context.Context, route string, document string) error {
	if err := c.client.Set(ctx, shellKeyPrefix+route, document, c.ttl).Err(); err != nil {
		return fmt.Errorf("shell cache set %q: %w", route, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisShellCache) Close() error {
	return c.client.Close()
}
