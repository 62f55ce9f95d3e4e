package service

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/catalog"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/notify"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Catalog ids shared by the service tests.
const (
	itemConsumerPistol  = 10
	itemConsumerSMG     = 11
	itemIndustrialGlock = 12
	itemRestrictedAK    = 20
	itemCovertAWP       = 40
	itemWeaponCase      = 30
	itemStickerCapsule  = 31
	itemCaseKey         = 50
	itemCovertSticker   = 60
	itemContrabandM4    = 70
)

func testCatalog() catalog.Catalog {
	return catalog.NewStatic([]catalog.Item{
		{ID: itemConsumerPistol, Name: "P250 Sand Dune", Rarity: catalog.RarityConsumer, Type: catalog.TypeWeapon, Category: catalog.CategoryWeapon},
		{ID: itemConsumerSMG, Name: "MP9 Storm", Rarity: catalog.RarityConsumer, Type: catalog.TypeWeapon, Category: catalog.CategoryWeapon},
		{ID: itemIndustrialGlock, Name: "Glock-18 High Beam", Rarity: catalog.RarityIndustrial, Type: catalog.TypeWeapon, Category: catalog.CategoryWeapon},
		{ID: itemRestrictedAK, Name: "AK-47 Redline", Rarity: catalog.RarityRestricted, Type: catalog.TypeWeapon, Category: catalog.CategoryWeapon},
		{ID: itemCovertAWP, Name: "AWP Dragon Lore", Rarity: catalog.RarityCovert, Type: catalog.TypeWeapon, Category: catalog.CategoryWeapon},
		{ID: itemWeaponCase, Name: "Chroma Case", Rarity: catalog.RarityMilSpec, Category: catalog.CategoryWeaponCase,
			RequiredKeyID: itemCaseKey, Contents: []int{itemConsumerPistol, itemRestrictedAK, itemCovertAWP}},
		{ID: itemStickerCapsule, Name: "Community Capsule", Rarity: catalog.RarityMilSpec, Category: catalog.CategoryStickerCapsule,
			Contents: []int{itemCovertSticker}},
		{ID: itemCaseKey, Name: "Chroma Case Key", Rarity: catalog.RarityMilSpec, Category: catalog.CategoryKey},
		{ID: itemCovertSticker, Name: "Crown (Foil)", Rarity: catalog.RarityCovert, Type: catalog.TypeSticker, Category: catalog.CategorySticker},
		{ID: itemContrabandM4, Name: "M4A4 Howl", Rarity: catalog.RarityContraband, Type: catalog.TypeWeapon, Category: catalog.CategoryWeapon},
	})
}

// recordingNotifier captures announcements instead of calling a webhook.
type recordingNotifier struct {
	announcements []notify.Announcement
}

func (n *recordingNotifier) AnnounceUnlock(ctx context.Context, a notify.Announcement) {
	n.announcements = append(n.announcements, a)
}

type testEnv struct {
	st       *store.Store
	users    repository.UserRepository
	ledger   repository.LedgerRepository
	listings repository.ListingRepository
	economy  repository.EconomyRepository

	identity    *IdentityService
	inventories *InventoryService
	marketplace *MarketplaceService
	shop        *ShopService
	tradeup     *TradeUpService

	outbox   *Outbox
	notifier *recordingNotifier
	catalog  catalog.Catalog
	limits   inventory.Limits
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	users := repository.NewSQLUserRepository()
	ledger := repository.NewSQLLedgerRepository()
	listings := repository.NewSQLListingRepository()
	economy := repository.NewSQLEconomyRepository()

	gateway := cache.NewInventoryGateway(cache.NewNoop(), time.Minute)
	outbox := NewOutbox(64)
	t.Cleanup(outbox.Close)

	notifier := &recordingNotifier{}
	cat := testCatalog()
	limits := inventory.Limits{MaxItems: 64, StorageUnitMaxItems: 8}
	rng := rand.New(rand.NewSource(1))

	identity := NewIdentityService(st, ledger)
	env := &testEnv{
		st:          st,
		users:       users,
		ledger:      ledger,
		listings:    listings,
		economy:     economy,
		identity:    identity,
		inventories: NewInventoryService(st, users, economy, gateway),
		marketplace: NewMarketplaceService(st, users, listings, economy, identity, cat, gateway, outbox),
		shop:        NewShopService(st, users, economy, ledger, identity, cat, gateway, outbox, notifier, limits, rng),
		tradeup:     NewTradeUpService(st, users, identity, cat, gateway, outbox, limits, rng),
		outbox:      outbox,
		notifier:    notifier,
		catalog:     cat,
		limits:      limits,
	}
	return env
}

// seedUser creates a user row with the given balance and an empty inventory.
func (e *testEnv) seedUser(t *testing.T, id, coins string) {
	t.Helper()

	blob, err := inventory.Serialize(inventory.NewSnapshot())
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, e.users.Create(context.Background(), e.st.DB, &model.User{
		ID:        id,
		Name:      id,
		Coins:     decimal.RequireFromString(coins),
		Inventory: blob,
		SyncedAt:  now,
		CreatedAt: now,
	}))
}

// grantItem mints a real identity for the item and places it in the user's
// inventory, returning the snapshot key.
func (e *testEnv) grantItem(t *testing.T, userID string, it inventory.Item) string {
	t.Helper()
	ctx := context.Background()

	itemUUID, err := e.identity.CreateIdentity(ctx, it, userID, model.SourceDrop)
	require.NoError(t, err)
	it.UUID = itemUUID

	user, err := e.users.Get(ctx, e.st.DB, userID)
	require.NoError(t, err)

	snap := inventory.ParseOrEmpty(user.Inventory)
	snap, key, err := inventory.Add(snap, it, e.limits)
	require.NoError(t, err)

	blob, err := inventory.Serialize(snap)
	require.NoError(t, err)
	require.NoError(t, e.users.UpdateInventory(ctx, e.st.DB, userID, blob, user.InventoryVersion, time.Now().UTC()))
	return key
}

// snapshot reads the user's current inventory straight from the store.
func (e *testEnv) snapshot(t *testing.T, userID string) *inventory.Snapshot {
	t.Helper()

	user, err := e.users.Get(context.Background(), e.st.DB, userID)
	require.NoError(t, err)
	return inventory.ParseOrEmpty(user.Inventory)
}

// balance reads the user's current coin balance.
func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()

	user, err := e.users.Get(context.Background(), e.st.DB, userID)
	require.NoError(t, err)
	return user.Coins
}
