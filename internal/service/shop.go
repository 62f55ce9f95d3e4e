package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/catalog"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/notify"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"
	"badboys-inventory-api/pkg/apperror"
)

// ShopService sells storefront entries for coins and resolves container
// unlocks. Shop purchases burn coins - no seller is ever credited.
type ShopService struct {
	db       *store.Store
	users    repository.UserRepository
	economy  repository.EconomyRepository
	ledger   repository.LedgerRepository
	identity *IdentityService
	catalog  catalog.Catalog
	gateway  *cache.InventoryGateway
	outbox   *Outbox
	notifier notify.Notifier
	limits   inventory.Limits

	mu  sync.Mutex
	rng *rand.Rand
}

// NewShopService creates a new shop service. rng may be nil, in which case a
// time-seeded source is used; tests inject a fixed seed.
func NewShopService(
	db *store.Store,
	users repository.UserRepository,
	economy repository.EconomyRepository,
	ledger repository.LedgerRepository,
	identity *IdentityService,
	cat catalog.Catalog,
	gateway *cache.InventoryGateway,
	outbox *Outbox,
	notifier notify.Notifier,
	limits inventory.Limits,
	rng *rand.Rand,
) *ShopService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ShopService{
		db:       db,
		users:    users,
		economy:  economy,
		ledger:   ledger,
		identity: identity,
		catalog:  cat,
		gateway:  gateway,
		outbox:   outbox,
		notifier: notifier,
		limits:   limits,
		rng:      rng,
	}
}

// ListShopItems returns the storefront.
func (s *ShopService) ListShopItems(ctx context.Context) ([]model.ShopItem, error) {
	return s.economy.ListShopItems(ctx, s.db.DB)
}

// PurchaseShopItem debits the buyer by the shop price and applies the entry's
// effect atomically: container and key entries grant their catalog item into
// the buyer's inventory, coin entries credit their coin grant. The price paid
// leaves circulation entirely.
func (s *ShopService) PurchaseShopItem(ctx context.Context, userID string, shopItemID int64) (*inventory.Item, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperror.Storage("", err)
	}
	defer tx.Rollback()

	shopItem, err := s.economy.GetShopItem(ctx, tx, shopItemID)
	if err != nil {
		return nil, err
	}
	if shopItem.GrantsItem() {
		if _, ok := s.catalog.GetByID(shopItem.ItemID); !ok {
			return nil, apperror.Validation("shop entry references an unknown catalog item")
		}
	} else if shopItem.Category != model.ShopCoins {
		return nil, apperror.Validation("shop entry has an unknown category")
	}

	user, err := ensureUser(ctx, tx, s.users, userID, "")
	if err != nil {
		return nil, err
	}

	if err := s.users.Debit(ctx, tx, userID, shopItem.Price); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.economy.InsertCoinTransaction(ctx, tx, &model.CoinTransaction{
		UserID:      userID,
		Type:        model.TxSpent,
		Amount:      shopItem.Price.Neg(),
		Description: fmt.Sprintf("Bought %s from the shop", shopItem.Name),
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	if !shopItem.GrantsItem() {
		// Currency-only entry: credit the grant and stop, the inventory is
		// never touched.
		if shopItem.CoinsGranted.IsPositive() {
			if err := s.users.Credit(ctx, tx, userID, shopItem.CoinsGranted); err != nil {
				return nil, err
			}
			if err := s.economy.InsertCoinTransaction(ctx, tx, &model.CoinTransaction{
				UserID:      userID,
				Type:        model.TxEarned,
				Amount:      shopItem.CoinsGranted,
				Description: fmt.Sprintf("Redeemed %s", shopItem.Name),
				CreatedAt:   now,
			}); err != nil {
				return nil, err
			}
		}
		if err := tx.Commit(); err != nil {
			return nil, apperror.Storage("failed to commit shop purchase", err)
		}
		return nil, nil
	}

	item := inventory.Item{ID: shopItem.ItemID}
	itemUUID, err := s.identity.CreateIdentityTx(ctx, tx, item, userID, model.SourceShop)
	if err != nil {
		return nil, err
	}
	item.UUID = itemUUID

	snap := inventory.ParseOrEmpty(user.Inventory)
	newSnap, _, err := inventory.Add(snap, item, s.limits)
	if err != nil {
		return nil, err
	}

	blob, err := inventory.Serialize(newSnap)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateInventory(ctx, tx, userID, blob, user.InventoryVersion, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit shop purchase", err)
	}

	s.enqueueInvalidate(userID)
	return &item, nil
}

// UnlockResult is the outcome of a container unlock.
type UnlockResult struct {
	Item   inventory.Item `json:"item"`
	Key    string         `json:"key"`
	Name   string         `json:"name"`
	Rarity catalog.Rarity `json:"rarity"`
}

// UnlockContainer consumes a container (and its key, when the container
// requires one) and grants one randomly selected reward. Container, key and
// reward land in the same snapshot write: a consumed container without a
// reward can never be observed.
func (s *ShopService) UnlockContainer(ctx context.Context, userID, containerKey, keyKey string) (*UnlockResult, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperror.Storage("", err)
	}
	defer tx.Rollback()

	user, err := s.users.Get(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	snap := inventory.ParseOrEmpty(user.Inventory)
	containerRec, ok := snap.Items[containerKey]
	if !ok {
		return nil, apperror.NotFound("container not found in inventory").WithCode("ITEM_NOT_FOUND")
	}

	containerDef, ok := s.catalog.GetByID(containerRec.ID)
	if !ok || !containerDef.IsContainer() {
		return nil, apperror.Validation("item is not an unlockable container")
	}

	if containerDef.RequiredKeyID != 0 {
		keyRec, ok := snap.Items[keyKey]
		if keyKey == "" || !ok {
			return nil, apperror.Validation("container requires a key")
		}
		if keyRec.ID != containerDef.RequiredKeyID {
			return nil, apperror.Validation("key does not fit this container")
		}
	} else {
		// Keyless containers must not silently eat an unrelated item.
		keyKey = ""
	}

	rewardDef, err := s.rollReward(containerDef)
	if err != nil {
		return nil, err
	}

	reward := s.rollAttributes(rewardDef)
	itemUUID, err := s.identity.CreateIdentityTx(ctx, tx, reward, userID, model.SourceCase)
	if err != nil {
		return nil, err
	}
	reward.UUID = itemUUID

	newSnap, rewardKey, err := inventory.Unlock(snap, containerKey, keyKey, reward, s.limits)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	blob, err := inventory.Serialize(newSnap)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateInventory(ctx, tx, userID, blob, user.InventoryVersion, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit unlock", err)
	}

	if containerRec.UUID != "" {
		consumed := containerRec.UUID
		s.outbox.Enqueue(Task{Name: "unlock-consume", Run: func(ctx context.Context) error {
			return s.identity.MarkDeleted(ctx, consumed)
		}})
	}

	userName := user.Name
	if userName == "" {
		userName = userID
	}
	announcement := notify.Announcement{
		PlayerName: userName,
		ItemName:   rewardDef.Name,
		Rarity:     string(rewardDef.Rarity),
		StatTrak:   reward.StatTrak,
	}
	s.outbox.Enqueue(Task{Name: "unlock-announce", Run: func(ctx context.Context) error {
		s.notifier.AnnounceUnlock(ctx, announcement)
		return nil
	}})
	s.enqueueInvalidate(userID)

	return &UnlockResult{
		Item:   reward,
		Key:    rewardKey,
		Name:   rewardDef.Name,
		Rarity: rewardDef.Rarity,
	}, nil
}

// rollReward draws one outcome from the container's weighted pool.
func (s *ShopService) rollReward(containerDef *catalog.Item) (*catalog.Item, error) {
	var candidates []*catalog.Item
	for _, id := range containerDef.Contents {
		if def, ok := s.catalog.GetByID(id); ok {
			candidates = append(candidates, def)
		}
	}

	pool := inventory.BuildPool(candidates)
	total := inventory.TotalWeight(pool)
	if total <= 0 {
		return nil, apperror.Validation("container has no possible rewards")
	}

	s.mu.Lock()
	r := s.rng.Intn(total)
	s.mu.Unlock()

	return inventory.Pick(pool, r)
}

// rollAttributes generates the variable attributes of a freshly unlocked item.
func (s *ShopService) rollAttributes(def *catalog.Item) inventory.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := inventory.Item{ID: def.ID}
	if def.Type == catalog.TypeWeapon {
		wear := s.rng.Float64()
		seed := s.rng.Intn(1000)
		item.Wear = &wear
		item.Seed = &seed
		item.StatTrak = s.rng.Intn(10) == 0
	}
	return item
}

func (s *ShopService) enqueueInvalidate(userID string) {
	s.outbox.Enqueue(Task{Name: "invalidate-inventory", Run: func(ctx context.Context) error {
		s.gateway.Invalidate(ctx, userID)
		return nil
	}})
}
