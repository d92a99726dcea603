package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vannrr/fmark/internal/log"
)

// Stats counts how a ReadThroughCache answered.
type Stats struct {
	Hits     int64 // answered from the cache
	Loads    int64 // loaded with fn and stored
	Failures int64 // fn failed, nothing stored
}

// ReadThroughCache loads values with fn on a miss and stores them. Errors are
// never cached.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool

	hits     atomic.Int64
	loads    atomic.Int64
	failures atomic.Int64
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

// Get returns the cached value for key, loading it from input on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if !r.shouldSkipCache {
		if value, ok := r.cache.Get(ctx, key); ok {
			r.hits.Add(1)
			return value, nil
		}
	}
	return r.load(ctx, key, input, ttl)
}

// GetWithRefresh is Get, extending the TTL of a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if !r.shouldSkipCache {
		if value, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
			r.hits.Add(1)
			return value, nil
		}
	}
	return r.load(ctx, key, input, ttl)
}

// Stats returns the counters since the cache was created.
func (r *ReadThroughCache[K, V, I]) Stats() Stats {
	return Stats{
		Hits:     r.hits.Load(),
		Loads:    r.loads.Load(),
		Failures: r.failures.Load(),
	}
}

func (r *ReadThroughCache[K, V, I]) load(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	start := time.Now()
	value, err := r.fn(ctx, input)
	if err != nil {
		r.failures.Add(1)
		log.Debug(log.CatCache, "cache load failed", "key", key, "error", err.Error())
		return value, err
	}
	r.loads.Add(1)
	log.Debug(log.CatCache, "cache loaded", "key", key, "took", time.Since(start), "skip_cache", r.shouldSkipCache)

	if !r.shouldSkipCache {
		r.cache.Set(ctx, key, value, ttl)
	}
	return value, nil
}
