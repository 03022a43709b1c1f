package geocode

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

const cacheKeyPrefix = "geocode:"

type cacheEntry struct {
	resolution Resolution
	expires    time.Time
}

// CachedResolver caches successful zone resolutions in front of another
// Resolver. Entries live in Redis when a client is configured, otherwise
// in an in-process map. Failed lookups are never cached.
type CachedResolver struct {
	inner Resolver
	redis *redis.Client
	ttl   time.Duration

	mu    sync.Mutex
	local map[string]cacheEntry
}

// NewCachedResolver wraps inner with a TTL cache. client may be nil, in
// which case entries are kept in process memory.
func NewCachedResolver(inner Resolver, client *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		redis: client,
		ttl:   ttl,
		local: make(map[string]cacheEntry),
	}
}

func (c *CachedResolver) ResolveZone(ctx context.Context, postcode, houseNumber, suffix string) (*Resolution, error) {
	key := cacheKeyPrefix + NormalizePostcode(postcode) + ":" + houseNumber + ":" + suffix

	if res, ok := c.get(ctx, key); ok {
		logging.Debug("geocode cache hit", zap.String("key", key))
		return res, nil
	}

	res, err := c.inner.ResolveZone(ctx, postcode, houseNumber, suffix)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, res)
	return res, nil
}

func (c *CachedResolver) get(ctx context.Context, key string) (*Resolution, bool) {
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, key).Bytes()
		if err != nil {
			if err != redis.Nil {
				logging.Warn("geocode cache read failed", zap.Error(err))
			}
			return nil, false
		}
		var res Resolution
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, false
		}
		return &res, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.local[key]
	if !ok || time.Now().After(entry.expires) {
		delete(c.local, key)
		return nil, false
	}
	res := entry.resolution
	return &res, true
}

func (c *CachedResolver) put(ctx context.Context, key string, res *Resolution) {
	if c.redis != nil {
		raw, err := json.Marshal(res)
		if err != nil {
			return
		}
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logging.Warn("geocode cache write failed", zap.Error(err))
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = cacheEntry{resolution: *res, expires: time.Now().Add(c.ttl)}
}
