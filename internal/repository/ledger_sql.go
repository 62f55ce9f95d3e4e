package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/pkg/apperror"
)

// SQLLedgerRepository implements LedgerRepository on the relational store.
type SQLLedgerRepository struct{}

// NewSQLLedgerRepository creates a new item ledger repository.
func NewSQLLedgerRepository() *SQLLedgerRepository {
	return &SQLLedgerRepository{}
}

// InsertIdentity writes a new item identity record.
func (r *SQLLedgerRepository) InsertIdentity(ctx context.Context, q DBTX, identity *model.ItemIdentity) error {
	query := `INSERT INTO item_identities
		(item_uuid, item_id, wear, seed, name_tag, stickers, created_by, source, current_owner, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	var stickers interface{}
	if len(identity.Stickers) > 0 {
		stickers = string(identity.Stickers)
	}

	_, err := q.ExecContext(ctx, query,
		identity.ItemUUID, identity.ItemID,
		nullFloat(identity.Wear), nullInt(identity.Seed),
		identity.NameTag, stickers,
		identity.CreatedBy, identity.Source,
		nullString(identity.CurrentOwner), identity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert identity %s: %w", identity.ItemUUID, err)
	}
	return nil
}

// GetIdentity retrieves an identity record by item UUID.
func (r *SQLLedgerRepository) GetIdentity(ctx context.Context, q DBTX, itemUUID string) (*model.ItemIdentity, error) {
	query := `SELECT item_uuid, item_id, wear, seed, name_tag, stickers, created_by, source, current_owner, created_at, deleted_at
		FROM item_identities WHERE item_uuid = ?`

	var id model.ItemIdentity
	var wear sql.NullFloat64
	var seed sql.NullInt64
	var stickers sql.NullString
	var owner sql.NullString
	var deletedAt sql.NullTime

	err := q.QueryRowContext(ctx, query, itemUUID).Scan(
		&id.ItemUUID, &id.ItemID, &wear, &seed, &id.NameTag, &stickers,
		&id.CreatedBy, &id.Source, &owner, &id.CreatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item identity not found")
		}
		return nil, fmt.Errorf("failed to get identity %s: %w", itemUUID, err)
	}

	if wear.Valid {
		id.Wear = &wear.Float64
	}
	if seed.Valid {
		v := int(seed.Int64)
		id.Seed = &v
	}
	if stickers.Valid {
		id.Stickers = []byte(stickers.String)
	}
	if owner.Valid {
		id.CurrentOwner = &owner.String
	}
	if deletedAt.Valid {
		id.DeletedAt = &deletedAt.Time
	}
	return &id, nil
}

// SetOwner points the identity's ownership at a new user. Ownership here is
// an audit pointer; the inventory blob stays authoritative.
func (r *SQLLedgerRepository) SetOwner(ctx context.Context, q DBTX, itemUUID, owner string) error {
	query := `UPDATE item_identities SET current_owner = ? WHERE item_uuid = ? AND deleted_at IS NULL`

	result, err := q.ExecContext(ctx, query, owner, itemUUID)
	if err != nil {
		return fmt.Errorf("failed to set owner for %s: %w", itemUUID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("item identity not found")
	}
	return nil
}

// MarkDeleted marks the identity consumed: owner cleared, deletion stamped.
func (r *SQLLedgerRepository) MarkDeleted(ctx context.Context, q DBTX, itemUUID string, at time.Time) error {
	query := `UPDATE item_identities SET current_owner = NULL, deleted_at = ?
		WHERE item_uuid = ? AND deleted_at IS NULL`

	result, err := q.ExecContext(ctx, query, at, itemUUID)
	if err != nil {
		return fmt.Errorf("failed to mark %s deleted: %w", itemUUID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("item identity not found")
	}
	return nil
}

// InsertTransfer appends one history entry.
func (r *SQLLedgerRepository) InsertTransfer(ctx context.Context, q DBTX, transfer *model.ItemTransfer) error {
	query := `INSERT INTO item_transfers
		(item_uuid, from_user, to_user, transfer_type, trade_id, listing_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var metadata interface{}
	if len(transfer.Metadata) > 0 {
		metadata = string(transfer.Metadata)
	}

	_, err := q.ExecContext(ctx, query,
		transfer.ItemUUID, nullString(transfer.FromUser), transfer.ToUser,
		transfer.TransferType, nullInt64(transfer.TradeID), nullInt64(transfer.ListingID),
		metadata, transfer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transfer for %s: %w", transfer.ItemUUID, err)
	}
	return nil
}

// ListTransfers returns the item's history in append order.
func (r *SQLLedgerRepository) ListTransfers(ctx context.Context, q DBTX, itemUUID string) ([]model.ItemTransfer, error) {
	query := `SELECT id, item_uuid, from_user, to_user, transfer_type, trade_id, listing_id, metadata, created_at
		FROM item_transfers WHERE item_uuid = ? ORDER BY id ASC`

	rows, err := q.QueryContext(ctx, query, itemUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers for %s: %w", itemUUID, err)
	}
	defer rows.Close()

	var out []model.ItemTransfer
	for rows.Next() {
		var t model.ItemTransfer
		var fromUser sql.NullString
		var tradeID, listingID sql.NullInt64
		var metadata sql.NullString

		if err := rows.Scan(&t.ID, &t.ItemUUID, &fromUser, &t.ToUser, &t.TransferType,
			&tradeID, &listingID, &metadata, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if fromUser.Valid {
			t.FromUser = &fromUser.String
		}
		if tradeID.Valid {
			t.TradeID = &tradeID.Int64
		}
		if listingID.Valid {
			t.ListingID = &listingID.Int64
		}
		if metadata.Valid {
			t.Metadata = []byte(metadata.String)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

var _ LedgerRepository = (*SQLLedgerRepository)(nil)
