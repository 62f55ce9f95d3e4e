package cache

import (
	"context"
	"log"
	"time"
)

// InventoryGateway caches serialized inventory snapshots keyed by user id and
// invalidates them after mutations. Every method is best-effort: a cache
// failure is logged and swallowed, never surfaced to the caller.
type InventoryGateway struct {
	cache Cache
	ttl   time.Duration
}

// NewInventoryGateway creates a gateway over the given cache.
func NewInventoryGateway(cache Cache, ttl time.Duration) *InventoryGateway {
	if cache == nil {
		cache = NewNoop()
	}
	return &InventoryGateway{cache: cache, ttl: ttl}
}

func userKey(userID string) string {
	return "inv:user:" + userID
}

// Get returns the cached snapshot blob for a user, or nil on miss/failure.
func (g *InventoryGateway) Get(ctx context.Context, userID string) []byte {
	value, err := g.cache.Get(ctx, userKey(userID))
	if err != nil {
		if err != ErrCacheMiss {
			log.Printf("[InventoryGateway] get failed for user %s: %v", userID, err)
		}
		return nil
	}
	return value
}

// Set stores the snapshot blob for a user.
func (g *InventoryGateway) Set(ctx context.Context, userID string, blob []byte) {
	if err := g.cache.Set(ctx, userKey(userID), blob, g.ttl); err != nil {
		log.Printf("[InventoryGateway] set failed for user %s: %v", userID, err)
	}
}

// Invalidate drops the cached snapshot for a user. Called after every
// inventory mutation; absence of a cache must only change latency.
func (g *InventoryGateway) Invalidate(ctx context.Context, userID string) {
	if err := g.cache.Delete(ctx, userKey(userID)); err != nil {
		log.Printf("[InventoryGateway] invalidate failed for user %s: %v", userID, err)
	}
}
