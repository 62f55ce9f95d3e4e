package inventory

import (
	"testing"

	"badboys-inventory-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = Limits{MaxItems: 3, StorageUnitMaxItems: 2}

func TestAddAssignsUUIDKey(t *testing.T) {
	snap := NewSnapshot()

	out, key, err := Add(snap, Item{ID: 7}, testLimits)
	require.NoError(t, err)

	assert.True(t, IsUUIDKey(key))
	assert.Equal(t, key, out.Items[key].UUID)
	assert.Equal(t, 0, snap.Count(), "input snapshot must stay untouched")
	assert.Equal(t, 1, out.Count())
}

func TestAddRejectsAtCapacity(t *testing.T) {
	snap := NewSnapshot()
	var err error
	for i := 0; i < testLimits.MaxItems; i++ {
		snap, _, err = Add(snap, Item{ID: i}, testLimits)
		require.NoError(t, err)
	}

	_, _, err = Add(snap, Item{ID: 99}, testLimits)
	require.Error(t, err)
	assert.Equal(t, apperror.KindCapacityExceeded, apperror.KindOf(err))
}

func TestInsertBypassesCapacity(t *testing.T) {
	snap := NewSnapshot()
	var err error
	for i := 0; i < testLimits.MaxItems; i++ {
		snap, _, err = Add(snap, Item{ID: i}, testLimits)
		require.NoError(t, err)
	}

	out := Insert(snap, "restored-key", Item{ID: 99, UUID: "restored-key"})
	assert.Equal(t, testLimits.MaxItems+1, out.Count())
}

func TestRemoveMissingItem(t *testing.T) {
	snap := NewSnapshot()

	_, _, err := Remove(snap, "nope")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "ITEM_NOT_FOUND", apperror.CodeOf(err))
}

func TestRemoveReturnsItem(t *testing.T) {
	snap := NewSnapshot()
	snap, key, err := Add(snap, Item{ID: 7, NameTag: "tagged"}, testLimits)
	require.NoError(t, err)

	out, it, err := Remove(snap, key)
	require.NoError(t, err)
	assert.Equal(t, 7, it.ID)
	assert.Equal(t, "tagged", it.NameTag)
	assert.Equal(t, 0, out.Count())
	assert.Equal(t, 1, snap.Count())
}

func TestUpdateAttributes(t *testing.T) {
	snap := NewSnapshot()
	snap, key, err := Add(snap, Item{ID: 7}, testLimits)
	require.NoError(t, err)

	wear := 0.31
	tag := "renamed"
	out, err := Update(snap, key, Attrs{Wear: &wear, NameTag: &tag})
	require.NoError(t, err)

	assert.Equal(t, wear, *out.Items[key].Wear)
	assert.Equal(t, "renamed", out.Items[key].NameTag)
	assert.Empty(t, snap.Items[key].NameTag)
}

func TestUnlockConsumesContainerAndKey(t *testing.T) {
	snap := NewSnapshot()
	snap, containerKey, err := Add(snap, Item{ID: 100}, testLimits)
	require.NoError(t, err)
	snap, keyKey, err := Add(snap, Item{ID: 200}, testLimits)
	require.NoError(t, err)

	out, rewardKey, err := Unlock(snap, containerKey, keyKey, Item{ID: 7}, testLimits)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Count())
	assert.Equal(t, 7, out.Items[rewardKey].ID)
	assert.NotContains(t, out.Items, containerKey)
	assert.NotContains(t, out.Items, keyKey)
	assert.Equal(t, 2, snap.Count())
}

func TestUnlockKeyless(t *testing.T) {
	snap := NewSnapshot()
	snap, containerKey, err := Add(snap, Item{ID: 100}, testLimits)
	require.NoError(t, err)

	out, rewardKey, err := Unlock(snap, containerKey, "", Item{ID: 7}, testLimits)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Count())
	assert.Equal(t, 7, out.Items[rewardKey].ID)
}

func TestUnlockMissingKeyLeavesSnapshotIntact(t *testing.T) {
	snap := NewSnapshot()
	snap, containerKey, err := Add(snap, Item{ID: 100}, testLimits)
	require.NoError(t, err)

	_, _, err = Unlock(snap, containerKey, "missing-key", Item{ID: 7}, testLimits)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Contains(t, snap.Items, containerKey)
}

func TestStoreAndTakeFromUnit(t *testing.T) {
	snap := NewSnapshot()
	snap, unitKey, err := Add(snap, Item{ID: 300}, testLimits)
	require.NoError(t, err)
	snap, itemKey, err := Add(snap, Item{ID: 7}, testLimits)
	require.NoError(t, err)

	stored, err := StoreInUnit(snap, unitKey, itemKey, testLimits)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Count())
	assert.Contains(t, stored.Items[unitKey].Contents, itemKey)

	taken, err := TakeFromUnit(stored, unitKey, itemKey, testLimits)
	require.NoError(t, err)
	assert.Equal(t, 2, taken.Count())
	assert.NotContains(t, taken.Items[unitKey].Contents, itemKey)
	assert.Equal(t, 7, taken.Items[itemKey].ID)
}

func TestStoreInUnitRejectsSelf(t *testing.T) {
	snap := NewSnapshot()
	snap, unitKey, err := Add(snap, Item{ID: 300}, testLimits)
	require.NoError(t, err)

	_, err = StoreInUnit(snap, unitKey, unitKey, testLimits)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestStoreInUnitBounded(t *testing.T) {
	limits := Limits{MaxItems: 10, StorageUnitMaxItems: 1}

	snap := NewSnapshot()
	snap, unitKey, err := Add(snap, Item{ID: 300}, limits)
	require.NoError(t, err)
	snap, firstKey, err := Add(snap, Item{ID: 1}, limits)
	require.NoError(t, err)
	snap, secondKey, err := Add(snap, Item{ID: 2}, limits)
	require.NoError(t, err)

	snap, err = StoreInUnit(snap, unitKey, firstKey, limits)
	require.NoError(t, err)

	_, err = StoreInUnit(snap, unitKey, secondKey, limits)
	require.Error(t, err)
	assert.Equal(t, apperror.KindCapacityExceeded, apperror.KindOf(err))
}
