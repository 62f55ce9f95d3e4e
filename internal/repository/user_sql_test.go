package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/internal/store"
	"badboys-inventory-api/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedUser(t *testing.T, st *store.Store, users *SQLUserRepository, id string, coins decimal.Decimal) *model.User {
	t.Helper()

	now := time.Now().UTC()
	u := &model.User{
		ID:        id,
		Name:      id,
		Coins:     coins,
		Inventory: []byte(`{"version":2,"items":{}}`),
		SyncedAt:  now,
		CreatedAt: now,
	}
	require.NoError(t, users.Create(context.Background(), st.DB, u))
	return u
}

func TestUserGetNotFound(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()

	_, err := users.Get(context.Background(), st.DB, "ghost")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUserCreateAndGet(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()
	seedUser(t, st, users, "steam:1", decimal.RequireFromString("12.50"))

	got, err := users.Get(context.Background(), st.DB, "steam:1")
	require.NoError(t, err)
	assert.Equal(t, "steam:1", got.ID)
	assert.True(t, got.Coins.Equal(decimal.RequireFromString("12.50")), "got %s", got.Coins)
	assert.Equal(t, int64(0), got.InventoryVersion)
}

func TestUpdateInventoryCAS(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()
	seedUser(t, st, users, "steam:1", decimal.Zero)
	ctx := context.Background()

	blob := []byte(`{"version":2,"items":{"k":{"id":1}}}`)
	require.NoError(t, users.UpdateInventory(ctx, st.DB, "steam:1", blob, 0, time.Now().UTC()))

	got, err := users.Get(ctx, st.DB, "steam:1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.InventoryVersion)
	assert.Equal(t, blob, got.Inventory)

	// A writer holding the stale version must lose.
	err = users.UpdateInventory(ctx, st.DB, "steam:1", blob, 0, time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
}

func TestDebitGuardsBalance(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()
	seedUser(t, st, users, "steam:1", decimal.RequireFromString("10.00"))
	ctx := context.Background()

	err := users.Debit(ctx, st.DB, "steam:1", decimal.RequireFromString("15.00"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientFunds, apperror.KindOf(err))

	// Balance untouched after the rejected debit.
	got, err := users.Get(ctx, st.DB, "steam:1")
	require.NoError(t, err)
	assert.True(t, got.Coins.Equal(decimal.RequireFromString("10.00")))

	require.NoError(t, users.Debit(ctx, st.DB, "steam:1", decimal.RequireFromString("10.00")))
	got, err = users.Get(ctx, st.DB, "steam:1")
	require.NoError(t, err)
	assert.True(t, got.Coins.IsZero())
}

func TestDebitMissingUser(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()

	err := users.Debit(context.Background(), st.DB, "ghost", decimal.NewFromInt(1))
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreditAndDebitRoundTrip(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()
	seedUser(t, st, users, "steam:1", decimal.Zero)
	ctx := context.Background()

	require.NoError(t, users.Credit(ctx, st.DB, "steam:1", decimal.RequireFromString("7.25")))
	require.NoError(t, users.Debit(ctx, st.DB, "steam:1", decimal.RequireFromString("2.25")))

	got, err := users.Get(ctx, st.DB, "steam:1")
	require.NoError(t, err)
	assert.True(t, got.Coins.Equal(decimal.NewFromInt(5)), "got %s", got.Coins)
}

func TestRepeatedCentAmountsStayExact(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()
	seedUser(t, st, users, "steam:1", decimal.Zero)
	ctx := context.Background()

	// Cent amounts have no exact float representation; accumulating them
	// must never drift.
	dime := decimal.RequireFromString("0.10")
	for i := 0; i < 30; i++ {
		require.NoError(t, users.Credit(ctx, st.DB, "steam:1", dime))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, users.Debit(ctx, st.DB, "steam:1", dime))
	}

	got, err := users.Get(ctx, st.DB, "steam:1")
	require.NoError(t, err)
	assert.True(t, got.Coins.Equal(decimal.RequireFromString("2.00")), "got %s", got.Coins)
}

func TestRejectNegativeAmounts(t *testing.T) {
	st := newTestStore(t)
	users := NewSQLUserRepository()
	seedUser(t, st, users, "steam:1", decimal.NewFromInt(10))
	ctx := context.Background()

	err := users.Credit(ctx, st.DB, "steam:1", decimal.NewFromInt(-1))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = users.Debit(ctx, st.DB, "steam:1", decimal.NewFromInt(-1))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
