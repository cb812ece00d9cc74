// Package cache memoizes expensive pairwise geometry computations across
// pipeline runs, adapted from the source's bare redis client (spec §6
// supplemented feature: bound the Noder's O(n^2) candidate-pair geometry
// work behind a cache when the same trail set is rebuilt repeatedly).
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ali01/trailnet/internal/config"
)

// Intersection mirrors geomops.Intersection for cache (de)serialization.
// Duplicated rather than imported so this package's dependency stays
// one-way (config -> cache), leaving geomops free of any cache awareness.
type Intersection struct {
	PointX, PointY, PointZ float64
	FracA, FracB           float64
	IdxA, IdxB             int
}

// GeometryCache memoizes a pair of trails' intersection computation by a
// caller-supplied digest key. A nil *GeometryCache always misses, so every
// caller works unchanged whether or not caching is enabled.
type GeometryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a GeometryCache backed by redis, or nil if disabled or
// unreachable at startup.
func New(cfg config.RedisConfig) *GeometryCache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("cache: redis unavailable at %s, running uncached: %v", cfg.Addr, err)
		return nil
	}

	return &GeometryCache{client: client, ttl: cfg.TTL}
}

// GetIntersections retrieves a memoized intersection result for key.
func (c *GeometryCache) GetIntersections(ctx context.Context, key string) ([]Intersection, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, "geomops:intersect:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var out []Intersection
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

// PutIntersections stores an intersection result for key.
func (c *GeometryCache) PutIntersections(ctx context.Context, key string, result []Intersection) {
	if c == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.client.Set(ctx, "geomops:intersect:"+key, data, c.ttl)
}

// Close releases the underlying redis connection, if any.
func (c *GeometryCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
