package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserBootstrapsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.inventories.EnsureUser(ctx, "steam:new", "Fresh Player")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Player", first.Name)
	assert.True(t, first.Coins.IsZero())

	// Second connect returns the existing row untouched.
	again, err := env.inventories.EnsureUser(ctx, "steam:new", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Player", again.Name)
}

func TestGetInventoryUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventories.GetInventory(context.Background(), "ghost")
	require.Error(t, err)
}

func TestBalanceAndTransactions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "player", "42.50")

	coins, err := env.inventories.Balance(ctx, "player")
	require.NoError(t, err)
	assert.True(t, coins.Equal(decimal.RequireFromString("42.50")))

	txs, err := env.inventories.Transactions(ctx, "player", 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestGetInventoryServesFromCache(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	memory := cache.NewMemoryCache()
	t.Cleanup(func() { memory.Close() })
	gateway := cache.NewInventoryGateway(memory, time.Minute)

	users := repository.NewSQLUserRepository()
	economy := repository.NewSQLEconomyRepository()
	svc := NewInventoryService(st, users, economy, gateway)
	ctx := context.Background()

	snap := inventory.NewSnapshot()
	snap.Items["a1b2c3d4-0000-0000-0000-000000000001"] = inventory.Item{
		ID:   7,
		UUID: "a1b2c3d4-0000-0000-0000-000000000001",
	}
	blob, err := inventory.Serialize(snap)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, users.Create(ctx, st.DB, &model.User{
		ID:        "player",
		Coins:     decimal.Zero,
		Inventory: blob,
		SyncedAt:  now,
		CreatedAt: now,
	}))

	first, err := svc.GetInventory(ctx, "player")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count())

	// A write that bypasses invalidation is invisible until the cache entry
	// drops: the read is served from cache.
	emptyBlob, err := inventory.Serialize(inventory.NewSnapshot())
	require.NoError(t, err)
	require.NoError(t, users.UpdateInventory(ctx, st.DB, "player", emptyBlob, 0, now))

	cached, err := svc.GetInventory(ctx, "player")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Count())

	// After invalidation the store is read again.
	gateway.Invalidate(ctx, "player")
	fresh, err := svc.GetInventory(ctx, "player")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Count())
}
