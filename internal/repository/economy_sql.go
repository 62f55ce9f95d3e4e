package repository

import (
	"context"
	"database/sql"
	"fmt"

	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/pkg/apperror"

	"github.com/shopspring/decimal"
)

// SQLEconomyRepository implements EconomyRepository on the relational store.
type SQLEconomyRepository struct{}

// NewSQLEconomyRepository creates a new economy repository.
func NewSQLEconomyRepository() *SQLEconomyRepository {
	return &SQLEconomyRepository{}
}

// InsertCoinTransaction appends one balance-change log row.
func (r *SQLEconomyRepository) InsertCoinTransaction(ctx context.Context, q DBTX, tx *model.CoinTransaction) error {
	query := `INSERT INTO coin_transactions (user_id, type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := q.ExecContext(ctx, query, tx.UserID, tx.Type, tx.Amount.String(), tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert coin transaction: %w", err)
	}
	return nil
}

// ListCoinTransactions returns the user's most recent balance changes.
func (r *SQLEconomyRepository) ListCoinTransactions(ctx context.Context, q DBTX, userID string, limit int) ([]model.CoinTransaction, error) {
	query := `SELECT id, user_id, type, amount, description, created_at
		FROM coin_transactions WHERE user_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list coin transactions: %w", err)
	}
	defer rows.Close()

	var out []model.CoinTransaction
	for rows.Next() {
		var t model.CoinTransaction
		var amount string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coin transaction: %w", err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertPricePoint appends one price-history record.
func (r *SQLEconomyRepository) InsertPricePoint(ctx context.Context, q DBTX, point *model.PricePoint) error {
	query := `INSERT INTO price_history (item_id, wear, price, listing_id, sold_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var wear interface{}
	if point.Wear != nil {
		wear = *point.Wear
	}
	var soldAt interface{}
	if point.SoldAt != nil {
		soldAt = *point.SoldAt
	}

	_, err := q.ExecContext(ctx, query,
		point.ItemID, wear, point.Price.String(), point.ListingID, soldAt, point.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert price point: %w", err)
	}
	return nil
}

// ListPriceHistory returns the most recent price points for an item.
func (r *SQLEconomyRepository) ListPriceHistory(ctx context.Context, q DBTX, itemID int, limit int) ([]model.PricePoint, error) {
	query := `SELECT id, item_id, wear, price, listing_id, sold_at, created_at
		FROM price_history WHERE item_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := q.QueryContext(ctx, query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	defer rows.Close()

	var out []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var wear sql.NullFloat64
		var price string
		var soldAt sql.NullTime

		if err := rows.Scan(&p.ID, &p.ItemID, &wear, &price, &p.ListingID, &soldAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		if wear.Valid {
			p.Wear = &wear.Float64
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		if soldAt.Valid {
			p.SoldAt = &soldAt.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetShopItem retrieves a shop entry by id.
func (r *SQLEconomyRepository) GetShopItem(ctx context.Context, q DBTX, id int64) (*model.ShopItem, error) {
	query := `SELECT id, name, price, category, item_id, coins_granted, created_at FROM shop_items WHERE id = ?`

	var s model.ShopItem
	var price, coins string

	err := q.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &price, &s.Category, &s.ItemID, &coins, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("shop item not found")
		}
		return nil, fmt.Errorf("failed to get shop item %d: %w", id, err)
	}

	s.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shop price: %w", err)
	}
	s.CoinsGranted, err = decimal.NewFromString(coins)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shop coin grant: %w", err)
	}
	return &s, nil
}

// ListShopItems returns all shop entries.
func (r *SQLEconomyRepository) ListShopItems(ctx context.Context, q DBTX) ([]model.ShopItem, error) {
	query := `SELECT id, name, price, category, item_id, coins_granted, created_at FROM shop_items ORDER BY id ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	defer rows.Close()

	var out []model.ShopItem
	for rows.Next() {
		var s model.ShopItem
		var price, coins string
		if err := rows.Scan(&s.ID, &s.Name, &price, &s.Category, &s.ItemID, &coins, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		s.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse shop price: %w", err)
		}
		s.CoinsGranted, err = decimal.NewFromString(coins)
		if err != nil {
			return nil, fmt.Errorf("failed to parse shop coin grant: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// InsertShopItem writes a new shop entry and fills in its generated id.
func (r *SQLEconomyRepository) InsertShopItem(ctx context.Context, q DBTX, item *model.ShopItem) error {
	query := `INSERT INTO shop_items (name, price, category, item_id, coins_granted, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		item.Name, item.Price.String(), item.Category, item.ItemID, item.CoinsGranted.String(), item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert shop item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read shop item id: %w", err)
	}
	item.ID = id
	return nil
}

var _ EconomyRepository = (*SQLEconomyRepository)(nil)
