package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/catalog"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/store"
	"badboys-inventory-api/pkg/apperror"

	"github.com/shopspring/decimal"
)

// MarketplaceService drives the listing lifecycle. Every state transition
// that touches more than one entity (inventory + listing, listing + two
// balances) runs inside a single transaction; identity-ledger history and
// cache invalidation go through the outbox after commit.
type MarketplaceService struct {
	db       *store.Store
	users    repository.UserRepository
	listings repository.ListingRepository
	economy  repository.EconomyRepository
	identity *IdentityService
	catalog  catalog.Catalog
	gateway  *cache.InventoryGateway
	outbox   *Outbox
}

// NewMarketplaceService creates a new marketplace service.
func NewMarketplaceService(
	db *store.Store,
	users repository.UserRepository,
	listings repository.ListingRepository,
	economy repository.EconomyRepository,
	identity *IdentityService,
	cat catalog.Catalog,
	gateway *cache.InventoryGateway,
	outbox *Outbox,
) *MarketplaceService {
	return &MarketplaceService{
		db:       db,
		users:    users,
		listings: listings,
		economy:  economy,
		identity: identity,
		catalog:  cat,
		gateway:  gateway,
		outbox:   outbox,
	}
}

// CreateListing removes the item from the seller's inventory and inserts an
// active listing, atomically. While listed, the item exists only inside the
// listing row.
func (s *MarketplaceService) CreateListing(ctx context.Context, sellerID, itemKey string, price decimal.Decimal, ttl time.Duration) (*model.Listing, error) {
	if !price.IsPositive() {
		return nil, apperror.Validation("price must be positive")
	}
	if ttl <= 0 {
		return nil, apperror.Validation("listing duration must be positive")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperror.Storage("", err)
	}
	defer tx.Rollback()

	seller, err := s.users.Get(ctx, tx, sellerID)
	if err != nil {
		return nil, err
	}

	snap := inventory.ParseOrEmpty(seller.Inventory)
	if _, ok := snap.Items[itemKey]; !ok {
		return nil, apperror.NotFound("item not found in inventory").WithCode("ITEM_NOT_FOUND")
	}

	if existing, err := s.listings.ActiveByItemKey(ctx, tx, itemKey); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.InvalidState("item is already listed").WithCode("ALREADY_LISTED")
	}

	newSnap, item, err := inventory.Remove(snap, itemKey)
	if err != nil {
		return nil, err
	}

	itemData, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze item: %w", err)
	}

	now := time.Now().UTC()
	listing := &model.Listing{
		UserID:    sellerID,
		ItemKey:   itemKey,
		ItemData:  itemData,
		Price:     price,
		Status:    model.ListingActive,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.listings.Insert(ctx, tx, listing); err != nil {
		return nil, err
	}

	blob, err := inventory.Serialize(newSnap)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateInventory(ctx, tx, sellerID, blob, seller.InventoryVersion, now); err != nil {
		return nil, err
	}

	if err := s.economy.InsertPricePoint(ctx, tx, &model.PricePoint{
		ItemID:    item.ID,
		Wear:      item.Wear,
		Price:     price,
		ListingID: listing.ID,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit listing", err)
	}

	s.enqueueInvalidate(sellerID)
	return listing, nil
}

// CancelListing returns the frozen item to the seller's current inventory
// (merge, not overwrite) and marks the listing cancelled. Only the seller
// may cancel.
func (s *MarketplaceService) CancelListing(ctx context.Context, listingID int64, requesterID string) (*model.Listing, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperror.Storage("", err)
	}
	defer tx.Rollback()

	listing, err := s.listings.Get(ctx, tx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != requesterID {
		return nil, apperror.Unauthorized("only the seller can cancel a listing")
	}

	listing, err = s.cancelLocked(ctx, tx, listing)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit cancellation", err)
	}

	s.enqueueInvalidate(listing.UserID)
	return listing, nil
}

// cancelLocked performs the cancel transition inside a caller-owned
// transaction. Shared by user cancels and the expiry sweeper.
func (s *MarketplaceService) cancelLocked(ctx context.Context, q repository.DBTX, listing *model.Listing) (*model.Listing, error) {
	now := time.Now().UTC()

	ok, err := s.listings.MarkCancelled(ctx, q, listing.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("listing is not active").WithCode("LISTING_NOT_ACTIVE")
	}

	var item inventory.Item
	if err := json.Unmarshal(listing.ItemData, &item); err != nil {
		return nil, fmt.Errorf("failed to thaw listed item: %w", err)
	}

	seller, err := s.users.Get(ctx, q, listing.UserID)
	if err != nil {
		return nil, err
	}
	snap := inventory.ParseOrEmpty(seller.Inventory)
	newSnap := inventory.Insert(snap, listing.ItemKey, item)

	blob, err := inventory.Serialize(newSnap)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateInventory(ctx, q, listing.UserID, blob, seller.InventoryVersion, now); err != nil {
		return nil, err
	}

	listing.Status = model.ListingCancelled
	listing.UpdatedAt = now
	return listing, nil
}

// PurchaseListing executes a sale: listing to sold, item into the buyer's
// inventory, price from buyer to seller, both coin transactions and the sale
// price point, all in one transaction. First successful purchase wins; a
// concurrent attempt observes the listing as no longer active.
func (s *MarketplaceService) PurchaseListing(ctx context.Context, listingID int64, buyerID string) (*model.Listing, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperror.Storage("", err)
	}
	defer tx.Rollback()

	listing, err := s.listings.Get(ctx, tx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID == buyerID {
		return nil, apperror.Validation("cannot buy your own listing")
	}

	now := time.Now().UTC()
	ok, err := s.listings.MarkSold(ctx, tx, listingID, buyerID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("listing is no longer active").WithCode("LISTING_NOT_ACTIVE")
	}

	var item inventory.Item
	if err := json.Unmarshal(listing.ItemData, &item); err != nil {
		return nil, fmt.Errorf("failed to thaw listed item: %w", err)
	}

	buyer, err := ensureUser(ctx, tx, s.users, buyerID, "")
	if err != nil {
		return nil, err
	}

	if err := s.users.Debit(ctx, tx, buyerID, listing.Price); err != nil {
		return nil, err
	}
	if err := s.users.Credit(ctx, tx, listing.UserID, listing.Price); err != nil {
		return nil, err
	}

	itemName := s.itemName(item.ID)
	if err := s.economy.InsertCoinTransaction(ctx, tx, &model.CoinTransaction{
		UserID:      buyerID,
		Type:        model.TxMarketplacePurchase,
		Amount:      listing.Price.Neg(),
		Description: fmt.Sprintf("Bought %s on the marketplace", itemName),
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	if err := s.economy.InsertCoinTransaction(ctx, tx, &model.CoinTransaction{
		UserID:      listing.UserID,
		Type:        model.TxMarketplaceSale,
		Amount:      listing.Price,
		Description: fmt.Sprintf("Sold %s on the marketplace", itemName),
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	snap := inventory.ParseOrEmpty(buyer.Inventory)
	newSnap := inventory.Insert(snap, listing.ItemKey, item)
	blob, err := inventory.Serialize(newSnap)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateInventory(ctx, tx, buyerID, blob, buyer.InventoryVersion, now); err != nil {
		return nil, err
	}

	if err := s.economy.InsertPricePoint(ctx, tx, &model.PricePoint{
		ItemID:    item.ID,
		Wear:      item.Wear,
		Price:     listing.Price,
		ListingID: listing.ID,
		SoldAt:    &now,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit purchase", err)
	}

	// Economic transaction is durable; history and caches follow best-effort.
	sellerID := listing.UserID
	listing.Status = model.ListingSold
	listing.BuyerID = &buyerID
	listing.SoldAt = &now

	if item.UUID != "" {
		itemUUID := item.UUID
		s.outbox.Enqueue(Task{Name: "marketplace-transfer", Run: func(ctx context.Context) error {
			from := sellerID
			if err := s.identity.RecordTransfer(ctx, itemUUID, &from, buyerID, model.TransferMarketplaceBuy, &listingID); err != nil {
				return err
			}
			return s.identity.UpdateOwnership(ctx, itemUUID, buyerID)
		}})
	}
	s.enqueueInvalidate(sellerID)
	s.enqueueInvalidate(buyerID)

	return listing, nil
}

// BrowseListings returns active, unexpired listings, newest first.
func (s *MarketplaceService) BrowseListings(ctx context.Context, limit, offset int) ([]model.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.listings.ListActive(ctx, s.db.DB, time.Now().UTC(), limit, offset)
}

// GetListing returns one listing by id.
func (s *MarketplaceService) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	return s.listings.Get(ctx, s.db.DB, id)
}

// PriceHistory returns recent price points for a catalog item.
func (s *MarketplaceService) PriceHistory(ctx context.Context, itemID, limit int) ([]model.PricePoint, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.economy.ListPriceHistory(ctx, s.db.DB, itemID, limit)
}

// SweepExpired cancels listings past expiry, returning each held item to its
// seller. Runs one transaction per listing so a single bad row cannot wedge
// the whole sweep.
func (s *MarketplaceService) SweepExpired(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = 100
	}

	expired, err := s.listings.ListExpiredActive(ctx, s.db.DB, time.Now().UTC(), batch)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range expired {
		listing := expired[i]
		if err := s.sweepOne(ctx, &listing); err != nil {
			log.Printf("[Marketplace] failed to sweep listing %d: %v", listing.ID, err)
			continue
		}
		swept++
		s.enqueueInvalidate(listing.UserID)
	}
	return swept, nil
}

func (s *MarketplaceService) sweepOne(ctx context.Context, listing *model.Listing) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.cancelLocked(ctx, tx, listing); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *MarketplaceService) itemName(itemID int) string {
	if def, ok := s.catalog.GetByID(itemID); ok {
		return def.Name
	}
	return fmt.Sprintf("item #%d", itemID)
}

func (s *MarketplaceService) enqueueInvalidate(userID string) {
	s.outbox.Enqueue(Task{Name: "invalidate-inventory", Run: func(ctx context.Context) error {
		s.gateway.Invalidate(ctx, userID)
		return nil
	}})
}
