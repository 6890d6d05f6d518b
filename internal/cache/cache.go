// Package cache provides the optional reply cache. Absence or failure of the
// backing store never changes pipeline correctness: a miss is a normal case.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careline-ai/careline/pkg/logging"
)

// Cache is the get/set/ttl port the orchestrator consumes.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Key derives a stable cache key from an utterance.
func Key(utterance string) string {
	sum := sha256.Sum256([]byte(utterance))
	return "careline:reply:" + hex.EncodeToString(sum[:])
}

// RedisCache backs the port with redis. All errors are logged and swallowed;
// callers only ever see a miss.
type RedisCache struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisCache wraps an existing redis client.
func NewRedisCache(client *redis.Client, logger *logging.Logger) *RedisCache {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

// Get returns the cached value, or a miss on absence or backend failure.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("reply cache get failed, treating as miss", "error", err)
		}
		return "", false
	}
	return val, true
}

// Set stores the value best-effort.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("reply cache set failed", "error", err)
	}
}

// Noop is the cache used when no backend is configured.
type Noop struct{}

// Get always misses.
func (Noop) Get(ctx context.Context, key string) (string, bool) { return "", false }

// Set discards the value.
func (Noop) Set(ctx context.Context, key, value string, ttl time.Duration) {}
