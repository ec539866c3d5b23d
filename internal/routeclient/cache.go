package routeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/pkg/logger"
)

// CachedClient decorates a domain.RouteFetcher with a Redis-backed cache
// keyed on rounded coordinates, so repeated identical drive legs (e.g. a
// trip re-planned after a failed previous run) skip the upstream HTTP call.
type CachedClient struct {
	inner domain.RouteFetcher
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedClient wraps inner with a Redis cache.
func NewCachedClient(inner domain.RouteFetcher, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedClient {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClient{inner: inner, redis: rdb, ttl: ttl, log: log}
}

func cacheKey(from, to domain.Location) string {
	return fmt.Sprintf("route:%.4f,%.4f->%.4f,%.4f", from.Lat, from.Lon, to.Lat, to.Lon)
}

// Route returns the cached route if present, otherwise fetches and caches it.
func (c *CachedClient) Route(ctx context.Context, from, to domain.Location) (*domain.Route, error) {
	key := cacheKey(from, to)

	if cached, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var route domain.Route
		if err := json.Unmarshal(cached, &route); err == nil {
			c.log.Debugw("route cache hit", "key", key)
			return &route, nil
		}
	}

	route, err := c.inner.Route(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(route); err == nil {
		if err := c.redis.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.Warnw("failed to cache route", "key", key, "error", err)
		}
	}

	return route, nil
}
