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

// SQLListingRepository implements ListingRepository on the relational store.
type SQLListingRepository struct{}

// NewSQLListingRepository creates a new listing repository.
func NewSQLListingRepository() *SQLListingRepository {
	return &SQLListingRepository{}
}

const listingColumns = `id, user_id, item_key, item_data, price, status, expires_at, buyer_id, created_at, sold_at, updated_at`

// Insert writes a new listing and fills in its generated id.
func (r *SQLListingRepository) Insert(ctx context.Context, q DBTX, listing *model.Listing) error {
	query := `INSERT INTO listings
		(user_id, item_key, item_data, price, status, expires_at, buyer_id, created_at, sold_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, NULL, ?)`

	result, err := q.ExecContext(ctx, query,
		listing.UserID, listing.ItemKey, string(listing.ItemData),
		listing.Price.String(), listing.Status, listing.ExpiresAt,
		listing.CreatedAt, listing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read listing id: %w", err)
	}
	listing.ID = id
	return nil
}

// Get retrieves a listing by id.
func (r *SQLListingRepository) Get(ctx context.Context, q DBTX, id int64) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

	l, err := scanListing(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("listing not found")
		}
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return l, nil
}

// ActiveByItemKey returns the active listing holding the given item, or nil.
func (r *SQLListingRepository) ActiveByItemKey(ctx context.Context, q DBTX, itemKey string) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE item_key = ? AND status = ? LIMIT 1`

	l, err := scanListing(q.QueryRowContext(ctx, query, itemKey, model.ListingActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active listing for %s: %w", itemKey, err)
	}
	return l, nil
}

// MarkSold transitions an active, unexpired listing to sold. Returns false
// when the listing lost the race or already expired: the guard is in the
// WHERE clause, so exactly one concurrent purchase can ever win.
func (r *SQLListingRepository) MarkSold(ctx context.Context, q DBTX, id int64, buyerID string, now time.Time) (bool, error) {
	query := `UPDATE listings
		SET status = ?, buyer_id = ?, sold_at = ?, updated_at = ?
		WHERE id = ? AND status = ? AND expires_at > ?`

	result, err := q.ExecContext(ctx, query,
		model.ListingSold, buyerID, now, now, id, model.ListingActive, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark listing %d sold: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkCancelled transitions an active listing to cancelled. Returns false
// when the listing was not active anymore.
func (r *SQLListingRepository) MarkCancelled(ctx context.Context, q DBTX, id int64, now time.Time) (bool, error) {
	query := `UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := q.ExecContext(ctx, query, model.ListingCancelled, now, id, model.ListingActive)
	if err != nil {
		return false, fmt.Errorf("failed to mark listing %d cancelled: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListActive returns browseable listings: active and not yet expired.
func (r *SQLListingRepository) ListActive(ctx context.Context, q DBTX, now time.Time, limit, offset int) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE status = ? AND expires_at > ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := q.QueryContext(ctx, query, model.ListingActive, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// ListExpiredActive returns listings still marked active but past expiry.
// These are the sweeper's reclamation targets.
func (r *SQLListingRepository) ListExpiredActive(ctx context.Context, q DBTX, now time.Time, limit int) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE status = ? AND expires_at <= ?
		ORDER BY expires_at ASC LIMIT ?`

	rows, err := q.QueryContext(ctx, query, model.ListingActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*model.Listing, error) {
	var l model.Listing
	var itemData string
	var price string
	var buyerID sql.NullString
	var soldAt sql.NullTime

	err := row.Scan(&l.ID, &l.UserID, &l.ItemKey, &itemData, &price, &l.Status,
		&l.ExpiresAt, &buyerID, &l.CreatedAt, &soldAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	l.ItemData = []byte(itemData)
	l.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing price: %w", err)
	}
	if buyerID.Valid {
		l.BuyerID = &buyerID.String
	}
	if soldAt.Valid {
		l.SoldAt = &soldAt.Time
	}
	return &l, nil
}

func scanListings(rows *sql.Rows) ([]model.Listing, error) {
	var out []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

var _ ListingRepository = (*SQLListingRepository)(nil)
