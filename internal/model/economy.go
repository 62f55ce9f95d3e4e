package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coin transaction types.
const (
	TxSpent               = "spent"
	TxEarned              = "earned"
	TxMarketplacePurchase = "marketplace_purchase"
	TxMarketplaceSale     = "marketplace_sale"
)

// CoinTransaction is the log row written alongside every balance change.
// Amount is signed: negative for debits, positive for credits.
type CoinTransaction struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PricePoint is an immutable price-history record, written once at listing
// time (SoldAt nil) and once at sale time. Analytics only, never consulted
// for correctness.
type PricePoint struct {
	ID        int64           `json:"id"`
	ItemID    int             `json:"item_id"`
	Wear      *float64        `json:"wear,omitempty"`
	Price     decimal.Decimal `json:"price"`
	ListingID int64           `json:"listing_id"`
	SoldAt    *time.Time      `json:"sold_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Shop item categories. Container and key entries grant a catalog item;
// coin entries are currency-only and never touch the inventory.
const (
	ShopContainer = "container"
	ShopKey       = "key"
	ShopCoins     = "coins"
)

// ShopItem is one purchasable storefront entry. ItemID references the catalog
// item granted on purchase for item-grant categories; CoinsGranted is the
// amount credited for currency-only entries.
type ShopItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	ItemID       int             `json:"item_id"`
	CoinsGranted decimal.Decimal `json:"coins_granted"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GrantsItem reports whether purchasing this entry places an item into the
// buyer's inventory.
func (s *ShopItem) GrantsItem() bool {
	return s.Category == ShopContainer || s.Category == ShopKey
}
