package service

import (
	"context"
	"time"

	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/pkg/apperror"

	"github.com/shopspring/decimal"
)

// ensureUser fetches a user, bootstrapping first-seen users with zero coins
// and an empty inventory.
func ensureUser(ctx context.Context, q repository.DBTX, users repository.UserRepository, id, name string) (*model.User, error) {
	u, err := users.Get(ctx, q, id)
	if err == nil {
		return u, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	blob, err := inventory.Serialize(inventory.NewSnapshot())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u = &model.User{
		ID:        id,
		Name:      name,
		Coins:     decimal.Zero,
		Inventory: blob,
		SyncedAt:  now,
		CreatedAt: now,
	}
	if err := users.Create(ctx, q, u); err != nil {
		return nil, err
	}
	return u, nil
}
