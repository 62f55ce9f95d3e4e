package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Listing statuses. Active transitions to exactly one of Sold or Cancelled.
const (
	ListingActive    = "active"
	ListingSold      = "sold"
	ListingCancelled = "cancelled"
)

// Listing represents one marketplace sale offer. ItemData is the item frozen
// at listing time; while the listing is active the item exists nowhere else.
type Listing struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	ItemKey   string          `json:"item_key"`
	ItemData  json.RawMessage `json:"item_data"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	ExpiresAt time.Time       `json:"expires_at"`
	BuyerID   *string         `json:"buyer_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	SoldAt    *time.Time      `json:"sold_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsExpired reports whether the listing is past its expiry at the given time.
func (l *Listing) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
