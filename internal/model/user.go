package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents one player account. The inventory is stored as a single
// serialized blob; InventoryVersion is the compare-and-swap stamp every
// inventory write must be conditioned on.
type User struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Coins            decimal.Decimal `json:"coins"`
	Inventory        []byte          `json:"-"`
	InventoryVersion int64           `json:"-"`
	SyncedAt         time.Time       `json:"synced_at"`
	CreatedAt        time.Time       `json:"created_at"`
}
