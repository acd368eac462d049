package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Key formatting
	"strconv"       // Generation formatting
	"strings"       // Key joining
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// CachePrefix namespaces every key written by Cache
const CachePrefix = "spent:"

// GenerationKey holds the counter bumped by Invalidate
const GenerationKey = CachePrefix + "generation"

// Cache stores JSON encoded read views in Redis. A Cache without a client
// is disabled: lookups miss and writes are dropped.
type Cache struct {
	rdb *redis.Client // Redis client, nil when caching is off
	ttl time.Duration // Lifetime of every entry
}

// NewCache wraps rdb; rdb may be nil
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis client is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Key builds a namespaced cache key from parts
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return CachePrefix + strings.Join(s, ":")
}

// ViewKey builds a key tied to the current generation. A value computed
// before an Invalidate and stored after it lands under the old generation
// and is never read again.
func (c *Cache) ViewKey(ctx context.Context, parts ...any) string {
	if !c.Enabled() {
		return Key(parts...)
	}
	gen, err := c.rdb.Get(ctx, GenerationKey).Int64()
	if err != nil {
		gen = 0 // No counter yet, or Redis is failing and the lookup will miss anyway
	}
	return Key(append([]any{"v" + strconv.FormatInt(gen, 10)}, parts...)...)
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value in Redis with the cache TTL
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err() // Set value in Redis with TTL
}

// Invalidate bumps the generation, then deletes every view under CachePrefix
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	// New readers switch to fresh keys before the old ones are removed
	if err := c.rdb.Incr(ctx, GenerationKey).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, CachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		if iter.Val() == GenerationKey {
			continue // Keep the counter
		}
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// Ping checks the Redis connection; a disabled cache is always healthy
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
