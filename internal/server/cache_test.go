package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewResponseCacheWithClient(client, time.Minute)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestResponseCache_SetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "/classes?module=core", []byte(`[]`)))

	value, err := cache.Get(ctx, "/classes?module=core")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}

func TestResponseCache_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, err := cache.Get(context.Background(), "/classes")
	require.Error(t, err)

	var miss ErrCacheMiss
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "/classes", miss.Key)
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value")))

	// Fast-forward time in miniredis past the TTL
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "key")
	var miss ErrCacheMiss
	assert.ErrorAs(t, err, &miss)
}

func TestResponseCache_Clear(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1")))
	require.NoError(t, cache.Set(ctx, "b", []byte("2")))

	require.NoError(t, cache.Clear(ctx))

	var miss ErrCacheMiss
	_, err := cache.Get(ctx, "a")
	assert.ErrorAs(t, err, &miss)
	_, err = cache.Get(ctx, "b")
	assert.ErrorAs(t, err, &miss)
}
