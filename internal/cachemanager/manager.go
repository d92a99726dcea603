// Package cachemanager memoizes slow lookups, such as resolving menu programs
// on $PATH, behind a generic cache abstraction over go-cache.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values of type V under keys of type K with a TTL.
// Delete and Flush return errors so implementations backed by something
// other than memory can report them.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
