package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/parcelgate/shipping-rates/app/dto"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*rateCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	cfg := &config.CacheConfig{
		Enabled:     true,
		Provider:    "redis",
		RedisPrefix: "shipping-rates-test",
		DefaultTTL:  time.Minute,
	}
	cache := newRateCache(rc, cfg)
	require.NotNil(t, cache)
	return cache, mr
}

func TestRateCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.get(ctx, "sindh")
	assert.False(t, ok)

	items := []dto.RateItem{
		{Country: "france", Weight: 0.5, Type: "non-docs", RetailRate: 10, DiscountRate: "8"},
	}
	cache.set(ctx, "sindh", items)

	got, ok := cache.get(ctx, "sindh")
	require.True(t, ok)
	assert.Equal(t, items, got)

	// Provinces are cached independently
	_, ok = cache.get(ctx, "punjab")
	assert.False(t, ok)
}

func TestRateCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.set(ctx, "punjab", []dto.RateItem{{Country: "germany"}})
	_, ok := cache.get(ctx, "punjab")
	require.True(t, ok)

	cache.invalidate(ctx, "punjab")
	_, ok = cache.get(ctx, "punjab")
	assert.False(t, ok)
}

func TestRateCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.set(ctx, "balochistan", []dto.RateItem{{Country: "italy"}})
	mr.FastForward(2 * time.Minute)

	_, ok := cache.get(ctx, "balochistan")
	assert.False(t, ok)
}

func TestRateCacheDisabled(t *testing.T) {
	assert.Nil(t, newRateCache(nil, nil))
	assert.Nil(t, newRateCache(nil, &config.CacheConfig{Enabled: true}))

	// A nil cache is safe to use everywhere
	var cache *rateCache
	ctx := context.Background()
	_, ok := cache.get(ctx, "sindh")
	assert.False(t, ok)
	cache.set(ctx, "sindh", nil)
	cache.invalidate(ctx, "sindh")
}
