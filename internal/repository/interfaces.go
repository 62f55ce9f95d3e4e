package repository

import (
	"context"
	"database/sql"
	"time"

	"badboys-inventory-api/internal/model"

	"github.com/shopspring/decimal"
)

// DBTX is the executor every repository method runs against. Both *sql.DB and
// *sql.Tx satisfy it, so a service can compose several repositories inside
// one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// UserRepository defines user row access: balance and the inventory blob.
type UserRepository interface {
	// Get retrieves a user by id.
	Get(ctx context.Context, q DBTX, id string) (*model.User, error)

	// Create inserts a new user row.
	Create(ctx context.Context, q DBTX, user *model.User) error

	// UpdateInventory writes the inventory blob conditioned on the version
	// read earlier (compare-and-swap). A concurrent write surfaces as a
	// storage error; the caller retries the whole operation or gives up.
	UpdateInventory(ctx context.Context, q DBTX, userID string, blob []byte, expectedVersion int64, now time.Time) error

	// Credit adds amount (>= 0) to the user's balance.
	Credit(ctx context.Context, q DBTX, userID string, amount decimal.Decimal) error

	// Debit subtracts amount (>= 0) from the user's balance, guarded so the
	// balance never goes negative and so a concurrent balance change cannot
	// be overwritten from a stale read.
	Debit(ctx context.Context, q DBTX, userID string, amount decimal.Decimal) error
}

// LedgerRepository defines item identity and transfer-history access.
type LedgerRepository interface {
	InsertIdentity(ctx context.Context, q DBTX, identity *model.ItemIdentity) error
	GetIdentity(ctx context.Context, q DBTX, itemUUID string) (*model.ItemIdentity, error)
	SetOwner(ctx context.Context, q DBTX, itemUUID, owner string) error
	MarkDeleted(ctx context.Context, q DBTX, itemUUID string, at time.Time) error
	InsertTransfer(ctx context.Context, q DBTX, transfer *model.ItemTransfer) error
	ListTransfers(ctx context.Context, q DBTX, itemUUID string) ([]model.ItemTransfer, error)
}

// ListingRepository defines marketplace listing access. The terminal
// transitions are conditional updates guarded on the active status, so a
// lost race is observed as zero rows affected, never as a double transition.
type ListingRepository interface {
	Insert(ctx context.Context, q DBTX, listing *model.Listing) error
	Get(ctx context.Context, q DBTX, id int64) (*model.Listing, error)
	ActiveByItemKey(ctx context.Context, q DBTX, itemKey string) (*model.Listing, error)
	MarkSold(ctx context.Context, q DBTX, id int64, buyerID string, now time.Time) (bool, error)
	MarkCancelled(ctx context.Context, q DBTX, id int64, now time.Time) (bool, error)
	ListActive(ctx context.Context, q DBTX, now time.Time, limit, offset int) ([]model.Listing, error)
	ListExpiredActive(ctx context.Context, q DBTX, now time.Time, limit int) ([]model.Listing, error)
}

// EconomyRepository defines coin-transaction, price-history and shop access.
type EconomyRepository interface {
	InsertCoinTransaction(ctx context.Context, q DBTX, tx *model.CoinTransaction) error
	ListCoinTransactions(ctx context.Context, q DBTX, userID string, limit int) ([]model.CoinTransaction, error)
	InsertPricePoint(ctx context.Context, q DBTX, point *model.PricePoint) error
	ListPriceHistory(ctx context.Context, q DBTX, itemID int, limit int) ([]model.PricePoint, error)
	GetShopItem(ctx context.Context, q DBTX, id int64) (*model.ShopItem, error)
	ListShopItems(ctx context.Context, q DBTX) ([]model.ShopItem, error)
	InsertShopItem(ctx context.Context, q DBTX, item *model.ShopItem) error
}
