package model

import (
	"encoding/json"
	"time"
)

// Item creation sources.
const (
	SourceDrop        = "drop"
	SourceCase        = "case"
	SourceShop        = "shop"
	SourceTrade       = "trade"
	SourceMarketplace = "marketplace"
	SourceCraft       = "craft"
	SourceTradeUp     = "trade_up"
)

// Transfer types for the append-only item history.
const (
	TransferTrade           = "trade"
	TransferMarketplaceSell = "marketplace_sell"
	TransferMarketplaceBuy  = "marketplace_buy"
	TransferInitialCreate   = "initial_create"
	TransferTradeupConsume  = "tradeup_consume"
	TransferTradeupReward   = "tradeup_reward"
)

// ItemIdentity is the permanent record of one physical item instance. Exactly
// one identity exists per UUID; CurrentOwner is nil iff DeletedAt is set.
type ItemIdentity struct {
	ItemUUID     string          `json:"item_uuid"`
	ItemID       int             `json:"item_id"`
	Wear         *float64        `json:"wear,omitempty"`
	Seed         *int            `json:"seed,omitempty"`
	NameTag      string          `json:"name_tag,omitempty"`
	Stickers     json.RawMessage `json:"stickers,omitempty"`
	CreatedBy    string          `json:"created_by"`
	Source       string          `json:"source"`
	CurrentOwner *string         `json:"current_owner"`
	CreatedAt    time.Time       `json:"created_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}

// ItemTransfer is one append-only history entry for an item identity. The
// transfer log is advisory; the inventory blob is authoritative for ownership.
type ItemTransfer struct {
	ID           int64           `json:"id"`
	ItemUUID     string          `json:"item_uuid"`
	FromUser     *string         `json:"from_user"`
	ToUser       string          `json:"to_user"`
	TransferType string          `json:"transfer_type"`
	TradeID      *int64          `json:"trade_id,omitempty"`
	ListingID    *int64          `json:"listing_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
