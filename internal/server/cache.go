package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is not in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return fmt.Sprintf("cache miss for key: %s", e.Key)
}

// ResponseCache is a Redis-backed cache for rendered API responses
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewResponseCache connects to Redis and verifies the connection
func NewResponseCache(addr, password string, db int, ttl time.Duration) (*ResponseCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewResponseCacheWithClient(client, ttl), nil
}

// NewResponseCacheWithClient wraps an existing Redis client
func NewResponseCacheWithClient(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		client: client,
		prefix: "typegraph:response:",
		ttl:    ttl,
	}
}

// Get retrieves a cached response body
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, err
	}
	return value, nil
}

// Set stores a response body with the configured TTL
func (c *ResponseCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, c.prefix+key, value, c.ttl).Err()
}

// Clear removes all cached responses
func (c *ResponseCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis connection
func (c *ResponseCache) Close() error {
	return c.client.Close()
}
