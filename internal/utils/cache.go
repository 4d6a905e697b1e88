package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error values
	"fmt"           // Error wrapping
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// ErrCacheMiss is returned when a key does not exist or has expired
var ErrCacheMiss = errors.New("cache miss")

// JSONCache stores JSON documents in Redis under a common key prefix
type JSONCache struct {
	rdb    *redis.Client // Redis client
	prefix string        // Prepended to every key, e.g. "session:"
}

// NewJSONCache creates a JSONCache that namespaces its keys with prefix
func NewJSONCache(rdb *redis.Client, prefix string) *JSONCache {
	return &JSONCache{rdb: rdb, prefix: prefix}
}

// Key returns the full Redis key for id
func (c *JSONCache) Key(id string) string {
	return c.prefix + id
}

// Get unmarshals the document stored for id into dest
func (c *JSONCache) Get(ctx context.Context, id string, dest any) error {
	val, err := c.rdb.Get(ctx, c.Key(id)).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss // Key does not exist
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", c.Key(id), err) // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode %s: %w", c.Key(id), err) // Corrupt payload
	}
	return nil
}

// Set stores value for id as JSON, expiring after ttl
func (c *JSONCache) Set(ctx context.Context, id string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Key(id), err)
	}
	return c.rdb.Set(ctx, c.Key(id), b, ttl).Err() // Set value in Redis with TTL
}

// Delete removes the document stored for id
func (c *JSONCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.Key(id)).Err() // Delete key from Redis
}
