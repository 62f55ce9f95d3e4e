package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/pkg/apperror"

	"github.com/shopspring/decimal"
)

// SQLUserRepository implements UserRepository on the relational store.
type SQLUserRepository struct{}

// NewSQLUserRepository creates a new user repository.
func NewSQLUserRepository() *SQLUserRepository {
	return &SQLUserRepository{}
}

// Get retrieves a user by id.
func (r *SQLUserRepository) Get(ctx context.Context, q DBTX, id string) (*model.User, error) {
	query := `SELECT id, name, coins, inventory, inventory_version, synced_at, created_at
		FROM users WHERE id = ?`

	var u model.User
	var coins string
	var inventory string

	err := q.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &coins, &inventory, &u.InventoryVersion, &u.SyncedAt, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Coins, err = decimal.NewFromString(coins)
	if err != nil {
		return nil, fmt.Errorf("failed to parse coins for user %s: %w", id, err)
	}
	u.Inventory = []byte(inventory)
	return &u, nil
}

// Create inserts a new user row.
func (r *SQLUserRepository) Create(ctx context.Context, q DBTX, user *model.User) error {
	query := `INSERT INTO users (id, name, coins, inventory, inventory_version, synced_at, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`

	_, err := q.ExecContext(ctx, query,
		user.ID, user.Name, user.Coins.String(), string(user.Inventory),
		user.SyncedAt, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}

// UpdateInventory writes the inventory blob via compare-and-swap on the
// version column. The storage engine enforces the per-user serialization
// discipline; application code never overwrites blindly.
func (r *SQLUserRepository) UpdateInventory(ctx context.Context, q DBTX, userID string, blob []byte, expectedVersion int64, now time.Time) error {
	query := `UPDATE users
		SET inventory = ?, inventory_version = inventory_version + 1, synced_at = ?
		WHERE id = ? AND inventory_version = ?`

	result, err := q.ExecContext(ctx, query, string(blob), now, userID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update inventory for user %s: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.Storage("inventory was modified concurrently, retry the operation", nil)
	}
	return nil
}

// Credit adds amount to the user's balance.
func (r *SQLUserRepository) Credit(ctx context.Context, q DBTX, userID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperror.Validation("credit amount must not be negative")
	}

	u, err := r.Get(ctx, q, userID)
	if err != nil {
		return err
	}
	return r.writeCoins(ctx, q, userID, u.Coins, u.Coins.Add(amount))
}

// Debit subtracts amount from the user's balance, failing when the balance
// is short. The write is guarded against the balance read in this call, so
// two concurrent debits cannot both succeed off a stale read.
func (r *SQLUserRepository) Debit(ctx context.Context, q DBTX, userID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperror.Validation("debit amount must not be negative")
	}

	u, err := r.Get(ctx, q, userID)
	if err != nil {
		return err
	}
	if u.Coins.LessThan(amount) {
		return apperror.InsufficientFunds("")
	}
	return r.writeCoins(ctx, q, userID, u.Coins, u.Coins.Sub(amount))
}

// writeCoins persists a balance computed in exact decimal arithmetic. The
// arithmetic happens here rather than in SQL because SQLite's numeric columns
// degrade string operands to floats, which drifts on repeated cent amounts.
// The old-value guard makes the read-compute-write atomic.
func (r *SQLUserRepository) writeCoins(ctx context.Context, q DBTX, userID string, oldCoins, newCoins decimal.Decimal) error {
	query := `UPDATE users SET coins = ? WHERE id = ? AND coins = ?`

	result, err := q.ExecContext(ctx, query, newCoins.String(), userID, oldCoins.String())
	if err != nil {
		return fmt.Errorf("failed to update balance for user %s: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.Storage("balance was modified concurrently, retry the operation", nil)
	}
	return nil
}

var _ UserRepository = (*SQLUserRepository)(nil)
