package service

import (
	"context"
	"testing"

	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/model"
	"badboys-inventory-api/pkg/apperror"
	"badboys-inventory-api/pkg/uid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIdentityWritesInitialTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wear := 0.07
	itemUUID, err := env.identity.CreateIdentity(ctx, inventory.Item{ID: itemRestrictedAK, Wear: &wear, NameTag: "mine"}, "owner", model.SourceDrop)
	require.NoError(t, err)
	assert.True(t, uid.IsValid(itemUUID))

	identity, err := env.identity.Get(ctx, itemUUID)
	require.NoError(t, err)
	assert.Equal(t, itemRestrictedAK, identity.ItemID)
	assert.Equal(t, "mine", identity.NameTag)
	require.NotNil(t, identity.Wear)
	assert.Equal(t, wear, *identity.Wear)
	require.NotNil(t, identity.CurrentOwner)
	assert.Equal(t, "owner", *identity.CurrentOwner)
	assert.Nil(t, identity.DeletedAt)

	history, err := env.identity.History(ctx, itemUUID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.TransferInitialCreate, history[0].TransferType)
	assert.Nil(t, history[0].FromUser)
	assert.Equal(t, "owner", history[0].ToUser)
}

func TestHistoryAppendOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	itemUUID, err := env.identity.CreateIdentity(ctx, inventory.Item{ID: itemRestrictedAK}, "alice", model.SourceDrop)
	require.NoError(t, err)

	from := "alice"
	require.NoError(t, env.identity.RecordTransfer(ctx, itemUUID, &from, "bob", model.TransferTrade, nil))
	require.NoError(t, env.identity.UpdateOwnership(ctx, itemUUID, "bob"))

	history, err := env.identity.History(ctx, itemUUID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.TransferInitialCreate, history[0].TransferType)
	assert.Equal(t, model.TransferTrade, history[1].TransferType)

	identity, err := env.identity.Get(ctx, itemUUID)
	require.NoError(t, err)
	require.NotNil(t, identity.CurrentOwner)
	assert.Equal(t, "bob", *identity.CurrentOwner)
}

func TestMarkDeletedRetiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	itemUUID, err := env.identity.CreateIdentity(ctx, inventory.Item{ID: itemConsumerPistol}, "alice", model.SourceDrop)
	require.NoError(t, err)

	require.NoError(t, env.identity.MarkDeleted(ctx, itemUUID))

	identity, err := env.identity.Get(ctx, itemUUID)
	require.NoError(t, err)
	assert.NotNil(t, identity.DeletedAt)
	assert.Nil(t, identity.CurrentOwner)

	// Retired identities refuse further ownership changes.
	err = env.identity.UpdateOwnership(ctx, itemUUID, "bob")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetIdentityNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.identity.Get(context.Background(), uid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
