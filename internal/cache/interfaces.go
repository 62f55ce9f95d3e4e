package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations. The abstraction allows
// swapping between memory cache (development) and Redis cache (production)
// without changing business logic; Noop exists for deployments with no cache
// at all, which must only cost latency, never correctness.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// CacheError is a sentinel error type for cache failures.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"

// Noop is the null-object Cache for cacheless deployments.
type Noop struct{}

// NewNoop creates a cache that stores nothing.
func NewNoop() *Noop { return &Noop{} }

// Get always misses.
func (*Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrCacheMiss }

// Set discards the value.
func (*Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

// Delete does nothing.
func (*Noop) Delete(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (*Noop) Close() error { return nil }

var _ Cache = (*Noop)(nil)
