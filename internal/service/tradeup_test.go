package service

import (
	"context"
	"strconv"
	"testing"

	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantConsumerWeapons(t *testing.T, env *testEnv, userID string, n int) []ItemRef {
	t.Helper()

	refs := make([]ItemRef, 0, n)
	for i := 0; i < n; i++ {
		id := itemConsumerPistol
		if i%2 == 1 {
			id = itemConsumerSMG
		}
		key := env.grantItem(t, userID, inventory.Item{ID: id})
		refs = append(refs, ItemRef{UUID: key})
	}
	return refs
}

func TestTradeUpConsumesTenGrantsOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "player", "0")
	refs := grantConsumerWeapons(t, env, "player", 10)

	reward, err := env.tradeup.TradeUp(ctx, "player", refs)
	require.NoError(t, err)
	require.NotNil(t, reward)

	// Ten consumer-grade weapons in, one industrial-grade weapon out.
	assert.Equal(t, itemIndustrialGlock, reward.ID)
	require.NotNil(t, reward.Wear)
	require.NotNil(t, reward.Seed)
	assert.NotEmpty(t, reward.UUID)

	snap := env.snapshot(t, "player")
	assert.Equal(t, 1, snap.Count())
	require.Contains(t, snap.Items, reward.UUID)
	for _, ref := range refs {
		assert.NotContains(t, snap.Items, ref.UUID)
	}

	// Ledger follow-up: consumed inputs retired, reward history written.
	env.outbox.Drain()
	for _, ref := range refs {
		identity, err := env.identity.Get(ctx, ref.UUID)
		require.NoError(t, err)
		assert.NotNil(t, identity.DeletedAt)
	}
	history, err := env.identity.History(ctx, reward.UUID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, model.TransferTradeupReward, history[len(history)-1].TransferType)
}

func TestTradeUpRequiresExactlyTen(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player", "0")
	refs := grantConsumerWeapons(t, env, "player", 9)

	_, err := env.tradeup.TradeUp(context.Background(), "player", refs)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.Equal(t, 9, env.snapshot(t, "player").Count())
}

func TestTradeUpRarityMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player", "0")
	refs := grantConsumerWeapons(t, env, "player", 9)
	akKey := env.grantItem(t, "player", inventory.Item{ID: itemRestrictedAK})
	refs = append(refs, ItemRef{UUID: akKey})

	_, err := env.tradeup.TradeUp(context.Background(), "player", refs)
	require.Error(t, err)
	assert.Equal(t, "RARITY_MISMATCH", apperror.CodeOf(err))

	// Nothing consumed on rejection.
	assert.Equal(t, 10, env.snapshot(t, "player").Count())
}

func TestTradeUpMaxRarity(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player", "0")

	refs := make([]ItemRef, 0, 10)
	for i := 0; i < 10; i++ {
		key := env.grantItem(t, "player", inventory.Item{ID: itemContrabandM4})
		refs = append(refs, ItemRef{UUID: key})
	}

	_, err := env.tradeup.TradeUp(context.Background(), "player", refs)
	require.Error(t, err)
	assert.Equal(t, "MAX_RARITY_REACHED", apperror.CodeOf(err))
}

func TestTradeUpMissingItem(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player", "0")
	refs := grantConsumerWeapons(t, env, "player", 9)
	refs = append(refs, ItemRef{UUID: "11111111-2222-3333-4444-555555555555"})

	_, err := env.tradeup.TradeUp(context.Background(), "player", refs)
	require.Error(t, err)
	assert.Equal(t, "ITEM_NOT_FOUND", apperror.CodeOf(err))
}

func TestTradeUpRejectsDuplicateRefs(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player", "0")
	refs := grantConsumerWeapons(t, env, "player", 9)
	refs = append(refs, refs[0])

	_, err := env.tradeup.TradeUp(context.Background(), "player", refs)
	require.Error(t, err)
	assert.Equal(t, "ITEM_NOT_FOUND", apperror.CodeOf(err))
}

func TestTradeUpResolvesLegacyRefs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "player", "0")

	// Legacy inventory: integer-UID keys, no UUIDs anywhere.
	snap := inventory.NewSnapshot()
	wear := 0.5
	for i := 1; i <= 10; i++ {
		snap.Items[strconv.Itoa(i)] = inventory.Item{ID: itemConsumerPistol, Wear: &wear, UID: int64(i)}
	}
	blob, err := inventory.Serialize(snap)
	require.NoError(t, err)
	user, err := env.users.Get(ctx, env.st.DB, "player")
	require.NoError(t, err)
	require.NoError(t, env.users.UpdateInventory(ctx, env.st.DB, "player", blob, user.InventoryVersion, user.SyncedAt))

	refs := make([]ItemRef, 10)
	for i := range refs {
		refs[i] = ItemRef{ID: itemConsumerPistol, Wear: &wear}
	}

	reward, err := env.tradeup.TradeUp(ctx, "player", refs)
	require.NoError(t, err)
	assert.Equal(t, itemIndustrialGlock, reward.ID)
	assert.Equal(t, 1, env.snapshot(t, "player").Count())
}
