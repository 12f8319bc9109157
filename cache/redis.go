// Package cache provides Redis-backed embedding memoization for C2, so
// repeated or cross-request identical chunk text skips the embedder round
// trip. Adapted from the teacher's memory/store.RedisStore key/value/TTL
// pattern, repointed at embedding vectors instead of agent memories.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EmbeddingCache memoizes text -> embedding vector lookups.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, embedding []float32) error
	Close() error
}

// Config configures a Redis-backed EmbeddingCache.
type Config struct {
	Addr     string        // Redis server address, e.g. "localhost:6379".
	Password string        // Redis password, if any.
	DB       int           // Redis logical database number.
	Prefix   string        // Key prefix for namespacing.
	TTL      time.Duration // Entry time-to-live; 0 means no expiration.
}

// RedisCache implements EmbeddingCache over a Redis client.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ EmbeddingCache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed embedding cache. A nil config yields
// sensible local defaults.
func NewRedisCache(cfg *Config) *RedisCache {
	if cfg == nil {
		cfg = &Config{
			Addr:   "localhost:6379",
			Prefix: "plagdetect:embed:",
			TTL:    24 * time.Hour,
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (c *RedisCache) key(text string) string {
	return fmt.Sprintf("%s%x", c.prefix, hashText(text))
}

// Get returns the cached embedding for text, if present.
func (c *RedisCache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, c.key(text)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var vec []float32
	if err := json.Unmarshal([]byte(data), &vec); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return vec, true, nil
}

// Set stores text's embedding, replacing any existing entry.
func (c *RedisCache) Set(ctx context.Context, text string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(text), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks whether the Redis connection is alive.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
