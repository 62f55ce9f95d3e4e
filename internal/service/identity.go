package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"
	"badboys-inventory-api/pkg/uid"
)

// IdentityService owns durable item identities: creation records, the
// ownership pointer and the append-only transfer history. The history is an
// audit trail written beside the economy, not the source of truth for who
// owns what right now - the inventory blobs are.
type IdentityService struct {
	db     *store.Store
	ledger repository.LedgerRepository
}

// NewIdentityService creates a new identity service.
func NewIdentityService(db *store.Store, ledger repository.LedgerRepository) *IdentityService {
	return &IdentityService{db: db, ledger: ledger}
}

// CreateIdentity mints a fresh UUID for a new physical item instance and
// writes its identity record plus the initial-create transfer, in one
// transaction. Storage failures propagate; there is no retry here.
func (s *IdentityService) CreateIdentity(ctx context.Context, item inventory.Item, createdBy, source string) (string, error) {
	itemUUID := uid.New()
	now := time.Now().UTC()

	identity := &model.ItemIdentity{
		ItemUUID:     itemUUID,
		ItemID:       item.ID,
		Wear:         item.Wear,
		Seed:         item.Seed,
		NameTag:      item.NameTag,
		CreatedBy:    createdBy,
		Source:       source,
		CurrentOwner: &createdBy,
		CreatedAt:    now,
	}
	if len(item.Stickers) > 0 {
		stickers, err := json.Marshal(item.Stickers)
		if err != nil {
			return "", fmt.Errorf("failed to encode stickers: %w", err)
		}
		identity.Stickers = stickers
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := s.ledger.InsertIdentity(ctx, tx, identity); err != nil {
		return "", err
	}
	if err := s.ledger.InsertTransfer(ctx, tx, &model.ItemTransfer{
		ItemUUID:     itemUUID,
		FromUser:     nil,
		ToUser:       createdBy,
		TransferType: model.TransferInitialCreate,
		CreatedAt:    now,
	}); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit identity creation: %w", err)
	}
	return itemUUID, nil
}

// CreateIdentityTx is CreateIdentity running inside a caller-owned
// transaction, for grant flows that mint the identity atomically with the
// inventory write.
func (s *IdentityService) CreateIdentityTx(ctx context.Context, q repository.DBTX, item inventory.Item, createdBy, source string) (string, error) {
	itemUUID := uid.New()
	now := time.Now().UTC()

	identity := &model.ItemIdentity{
		ItemUUID:     itemUUID,
		ItemID:       item.ID,
		Wear:         item.Wear,
		Seed:         item.Seed,
		NameTag:      item.NameTag,
		CreatedBy:    createdBy,
		Source:       source,
		CurrentOwner: &createdBy,
		CreatedAt:    now,
	}
	if len(item.Stickers) > 0 {
		stickers, err := json.Marshal(item.Stickers)
		if err != nil {
			return "", fmt.Errorf("failed to encode stickers: %w", err)
		}
		identity.Stickers = stickers
	}

	if err := s.ledger.InsertIdentity(ctx, q, identity); err != nil {
		return "", err
	}
	if err := s.ledger.InsertTransfer(ctx, q, &model.ItemTransfer{
		ItemUUID:     itemUUID,
		ToUser:       createdBy,
		TransferType: model.TransferInitialCreate,
		CreatedAt:    now,
	}); err != nil {
		return "", err
	}
	return itemUUID, nil
}

// RecordTransfer appends one history entry. It does not move the ownership
// pointer; callers pair it with UpdateOwnership when appropriate. The split
// exists so economic transactions can commit first and log history after.
func (s *IdentityService) RecordTransfer(ctx context.Context, itemUUID string, fromUser *string, toUser, transferType string, listingID *int64) error {
	return s.ledger.InsertTransfer(ctx, s.db.DB, &model.ItemTransfer{
		ItemUUID:     itemUUID,
		FromUser:     fromUser,
		ToUser:       toUser,
		TransferType: transferType,
		ListingID:    listingID,
		CreatedAt:    time.Now().UTC(),
	})
}

// UpdateOwnership points the identity at its new owner.
func (s *IdentityService) UpdateOwnership(ctx context.Context, itemUUID, newOwner string) error {
	return s.ledger.SetOwner(ctx, s.db.DB, itemUUID, newOwner)
}

// MarkDeleted marks an identity consumed (trade-up input, explicit delete).
func (s *IdentityService) MarkDeleted(ctx context.Context, itemUUID string) error {
	return s.ledger.MarkDeleted(ctx, s.db.DB, itemUUID, time.Now().UTC())
}

// Get returns the identity record for an item UUID.
func (s *IdentityService) Get(ctx context.Context, itemUUID string) (*model.ItemIdentity, error) {
	return s.ledger.GetIdentity(ctx, s.db.DB, itemUUID)
}

// History returns the item's transfer log in append order.
func (s *IdentityService) History(ctx context.Context, itemUUID string) ([]model.ItemTransfer, error) {
	return s.ledger.ListTransfers(ctx, s.db.DB, itemUUID)
}
