package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parcelgate/shipping-rates/app/dto"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/redis/go-redis/v9"
)

// rateCache is a read-through cache for per-province rate listings.
// A nil receiver or nil client disables caching entirely; every method
// degrades to a no-op so flows never branch on cache availability.
type rateCache struct {
	rc  *redis.Client
	cfg *config.CacheConfig
}

func newRateCache(rc *redis.Client, cfg *config.CacheConfig) *rateCache {
	if rc == nil || cfg == nil || !cfg.Enabled {
		return nil
	}
	return &rateCache{rc: rc, cfg: cfg}
}

func (c *rateCache) key(province string) string {
	return fmt.Sprintf("%s:rates:%s", c.cfg.RedisPrefix, province)
}

func (c *rateCache) get(ctx context.Context, province string) ([]dto.RateItem, bool) {
	if c == nil {
		return nil, false
	}
	bs, err := c.rc.Get(ctx, c.key(province)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil, false
	}
	var items []dto.RateItem
	if err := json.Unmarshal(bs, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *rateCache) set(ctx context.Context, province string, items []dto.RateItem) {
	if c == nil {
		return
	}
	bs, err := json.Marshal(items)
	if err != nil {
		return
	}
	ttl := c.cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	_ = c.rc.Set(ctx, c.key(province), bs, ttl).Err()
}

// invalidate drops the cached listing after any write to the province
// store. Cache failures are ignored; the next read repopulates.
func (c *rateCache) invalidate(ctx context.Context, province string) {
	if c == nil {
		return
	}
	_ = c.rc.Del(ctx, c.key(province)).Err()
}
