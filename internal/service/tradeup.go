package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/catalog"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"
	"badboys-inventory-api/pkg/apperror"
)

// TradeUpInputs is the number of same-rarity items a trade-up consumes.
const TradeUpInputs = 10

// ItemRef identifies one trade-up input. UUID is the supported reference;
// the (ID, Wear, NameTag) triple is a compatibility shim for legacy pre-UUID
// items and can pick the wrong copy when duplicates exist.
type ItemRef struct {
	UUID    string   `json:"uuid,omitempty"`
	ID      int      `json:"id,omitempty"`
	Wear    *float64 `json:"wear,omitempty"`
	NameTag string   `json:"nameTag,omitempty"`
}

// TradeUpService consumes ten items of equal rarity and grants one item of
// the next tier, atomically on the inventory snapshot.
type TradeUpService struct {
	db       *store.Store
	users    repository.UserRepository
	identity *IdentityService
	catalog  catalog.Catalog
	gateway  *cache.InventoryGateway
	outbox   *Outbox
	limits   inventory.Limits

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTradeUpService creates a new trade-up service. rng may be nil for a
// time-seeded source.
func NewTradeUpService(
	db *store.Store,
	users repository.UserRepository,
	identity *IdentityService,
	cat catalog.Catalog,
	gateway *cache.InventoryGateway,
	outbox *Outbox,
	limits inventory.Limits,
	rng *rand.Rand,
) *TradeUpService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TradeUpService{
		db:       db,
		users:    users,
		identity: identity,
		catalog:  cat,
		gateway:  gateway,
		outbox:   outbox,
		limits:   limits,
		rng:      rng,
	}
}

// TradeUp resolves the ten references against the user's inventory, removes
// them and adds one reward of the next rarity tier. Removal and reward are
// one snapshot transformation: partial completion cannot be persisted.
func (s *TradeUpService) TradeUp(ctx context.Context, userID string, refs []ItemRef) (*inventory.Item, error) {
	if len(refs) != TradeUpInputs {
		return nil, apperror.Validation("trade-up requires exactly 10 items")
	}

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
	keys, err := resolveRefs(snap, refs)
	if err != nil {
		return nil, err
	}

	rarity, itemType, err := s.commonRarity(snap, keys)
	if err != nil {
		return nil, err
	}

	nextTier, ok := rarity.Next()
	if !ok {
		return nil, apperror.Validation("items are already at the maximum rarity").WithCode("MAX_RARITY_REACHED")
	}

	candidates := s.catalog.ItemsByRarity(nextTier, itemType)
	if len(candidates) == 0 {
		candidates = s.catalog.ItemsByRarity(nextTier, "")
	}
	if len(candidates) == 0 {
		return nil, apperror.Validation("no catalog items exist at the next rarity tier")
	}

	s.mu.Lock()
	rewardDef := candidates[s.rng.Intn(len(candidates))]
	wear := s.rng.Float64()
	seed := s.rng.Intn(1000)
	s.mu.Unlock()

	reward := inventory.Item{ID: rewardDef.ID, Wear: &wear, Seed: &seed}
	itemUUID, err := s.identity.CreateIdentityTx(ctx, tx, reward, userID, model.SourceTradeUp)
	if err != nil {
		return nil, err
	}
	reward.UUID = itemUUID

	newSnap := snap
	consumed := make([]inventory.Item, 0, TradeUpInputs)
	for _, key := range keys {
		var it inventory.Item
		newSnap, it, err = inventory.Remove(newSnap, key)
		if err != nil {
			return nil, err
		}
		consumed = append(consumed, it)
	}
	newSnap, _, err = inventory.Add(newSnap, reward, s.limits)
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
		return nil, apperror.Storage("failed to commit trade-up", err)
	}

	// Ledger bookkeeping is advisory and follows the commit.
	rewardUUID := reward.UUID
	s.outbox.Enqueue(Task{Name: "tradeup-ledger", Run: func(ctx context.Context) error {
		owner := userID
		for _, it := range consumed {
			if it.UUID == "" {
				continue
			}
			if err := s.identity.RecordTransfer(ctx, it.UUID, &owner, userID, model.TransferTradeupConsume, nil); err != nil {
				return err
			}
			if err := s.identity.MarkDeleted(ctx, it.UUID); err != nil {
				return err
			}
		}
		return s.identity.RecordTransfer(ctx, rewardUUID, nil, userID, model.TransferTradeupReward, nil)
	}})
	s.enqueueInvalidate(userID)

	return &reward, nil
}

// resolveRefs maps each reference to a distinct snapshot key.
func resolveRefs(snap *inventory.Snapshot, refs []ItemRef) ([]string, error) {
	taken := make(map[string]bool, len(refs))
	keys := make([]string, 0, len(refs))

	for _, ref := range refs {
		key, err := resolveRef(snap, ref, taken)
		if err != nil {
			return nil, err
		}
		taken[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}

func resolveRef(snap *inventory.Snapshot, ref ItemRef, taken map[string]bool) (string, error) {
	if ref.UUID != "" {
		if _, ok := snap.Items[ref.UUID]; !ok || taken[ref.UUID] {
			return "", apperror.NotFound("trade-up item not found in inventory").WithCode("ITEM_NOT_FOUND")
		}
		return ref.UUID, nil
	}

	// Legacy fallback: first unclaimed item matching id, wear and name tag.
	for key, it := range snap.Items {
		if taken[key] || it.ID != ref.ID || it.NameTag != ref.NameTag {
			continue
		}
		if !wearEqual(it.Wear, ref.Wear) {
			continue
		}
		return key, nil
	}
	return "", apperror.NotFound("trade-up item not found in inventory").WithCode("ITEM_NOT_FOUND")
}

func wearEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// commonRarity checks all inputs share one rarity tier and returns it along
// with the inputs' item type when uniform.
func (s *TradeUpService) commonRarity(snap *inventory.Snapshot, keys []string) (catalog.Rarity, string, error) {
	var rarity catalog.Rarity
	var itemType string
	uniformType := true

	for i, key := range keys {
		def, ok := s.catalog.GetByID(snap.Items[key].ID)
		if !ok {
			return "", "", apperror.Validation("trade-up item is not in the catalog")
		}
		if i == 0 {
			rarity = def.Rarity
			itemType = def.Type
			continue
		}
		if def.Rarity != rarity {
			return "", "", apperror.Validation("all trade-up items must share one rarity").WithCode("RARITY_MISMATCH")
		}
		if def.Type != itemType {
			uniformType = false
		}
	}

	if !uniformType {
		itemType = ""
	}
	return rarity, itemType, nil
}

func (s *TradeUpService) enqueueInvalidate(userID string) {
	s.outbox.Enqueue(Task{Name: "invalidate-inventory", Run: func(ctx context.Context) error {
		s.gateway.Invalidate(ctx, userID)
		return nil
	}})
}
