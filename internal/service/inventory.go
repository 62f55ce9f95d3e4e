package service

import (
	"context"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"

	"github.com/shopspring/decimal"
)

// InventoryService serves the read side: snapshots, balances and the coin
// transaction log. Reads go through the cache gateway; the database stays the
// source of truth.
type InventoryService struct {
	db      *store.Store
	users   repository.UserRepository
	economy repository.EconomyRepository
	gateway *cache.InventoryGateway
}

// NewInventoryService creates a new inventory read service.
func NewInventoryService(db *store.Store, users repository.UserRepository, economy repository.EconomyRepository, gateway *cache.InventoryGateway) *InventoryService {
	return &InventoryService{db: db, users: users, economy: economy, gateway: gateway}
}

// GetInventory returns the user's parsed snapshot, cache-first. A snapshot
// served from cache may trail a concurrent mutation by one invalidation.
func (s *InventoryService) GetInventory(ctx context.Context, userID string) (*inventory.Snapshot, error) {
	if blob := s.gateway.Get(ctx, userID); blob != nil {
		if snap := inventory.Parse(blob); snap != nil {
			return snap, nil
		}
	}

	user, err := s.users.Get(ctx, s.db.DB, userID)
	if err != nil {
		return nil, err
	}

	snap := inventory.ParseOrEmpty(user.Inventory)
	if blob, err := inventory.Serialize(snap); err == nil {
		s.gateway.Set(ctx, userID, blob)
	}
	return snap, nil
}

// Balance returns the user's coin balance.
func (s *InventoryService) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	user, err := s.users.Get(ctx, s.db.DB, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Coins, nil
}

// Transactions returns the user's coin transaction log, newest first.
func (s *InventoryService) Transactions(ctx context.Context, userID string, limit int) ([]model.CoinTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.economy.ListCoinTransactions(ctx, s.db.DB, userID, limit)
}

// EnsureUser bootstraps a user record on first contact, typically when a
// player connects to the game server.
func (s *InventoryService) EnsureUser(ctx context.Context, userID, name string) (*model.User, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := ensureUser(ctx, tx, s.users, userID, name)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}
