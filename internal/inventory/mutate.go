package inventory

import (
	"fmt"

	"badboys-inventory-api/pkg/apperror"
	"badboys-inventory-api/pkg/uid"
)

// Limits bounds a user's inventory during mutation.
type Limits struct {
	MaxItems            int
	StorageUnitMaxItems int
}

// Attrs carries the updatable variable attributes of an item.
type Attrs struct {
	Wear     *float64
	Seed     *int
	NameTag  *string
	Stickers []Sticker
}

// All mutation functions are pure with respect to the input snapshot: they
// operate on a clone and return it, so a failed compound operation leaves the
// caller's snapshot untouched. Persisting the result and serializing
// concurrent mutations per user is the caller's job.

// Add inserts a new item under a fresh UUID key and returns the new snapshot
// and the assigned key. Items that already carry a UUID keep it.
func Add(s *Snapshot, it Item, limits Limits) (*Snapshot, string, error) {
	if s.Count() >= limits.MaxItems {
		return nil, "", apperror.CapacityExceeded(
			fmt.Sprintf("inventory is full (%d items)", limits.MaxItems))
	}

	if it.UUID == "" {
		it.UUID = uid.New()
	}
	key := it.UUID

	out := s.Clone()
	out.Items[key] = it
	return out, key, nil
}

// Insert places an item back under a specific key, merging into the current
// snapshot. Used to restore a held item (marketplace cancel, sweep): the
// restore must succeed even at capacity, because a held item reappearing
// beats the capacity bound.
func Insert(s *Snapshot, key string, it Item) *Snapshot {
	out := s.Clone()
	out.Items[key] = it
	return out
}

// Remove deletes the item under key and returns the new snapshot and the
// removed item.
func Remove(s *Snapshot, key string) (*Snapshot, Item, error) {
	it, ok := s.Items[key]
	if !ok {
		return nil, Item{}, apperror.NotFound("item not found in inventory").WithCode("ITEM_NOT_FOUND")
	}

	out := s.Clone()
	delete(out.Items, key)
	return out, it, nil
}

// Update applies variable-attribute changes to the item under key.
func Update(s *Snapshot, key string, attrs Attrs) (*Snapshot, error) {
	it, ok := s.Items[key]
	if !ok {
		return nil, apperror.NotFound("item not found in inventory").WithCode("ITEM_NOT_FOUND")
	}

	if attrs.Wear != nil {
		it.Wear = attrs.Wear
	}
	if attrs.Seed != nil {
		it.Seed = attrs.Seed
	}
	if attrs.NameTag != nil {
		it.NameTag = *attrs.NameTag
	}
	if attrs.Stickers != nil {
		it.Stickers = attrs.Stickers
	}

	out := s.Clone()
	out.Items[key] = it
	return out, nil
}

// Unlock applies the compound container-unlock mutation: consume the
// container, consume the key item (keyKey may be empty for keyless
// containers) and add the reward. All three effects land in the returned
// snapshot or none do.
func Unlock(s *Snapshot, containerKey, keyKey string, reward Item, limits Limits) (*Snapshot, string, error) {
	out, _, err := Remove(s, containerKey)
	if err != nil {
		return nil, "", apperror.NotFound("container not found in inventory").WithCode("ITEM_NOT_FOUND")
	}

	if keyKey != "" {
		out, _, err = Remove(out, keyKey)
		if err != nil {
			return nil, "", apperror.NotFound("key not found in inventory").WithCode("ITEM_NOT_FOUND")
		}
	}

	// Net count never grows here (2-for-1 or 1-for-1), but the bound is
	// still enforced for consistency with Add.
	out, key, err := Add(out, reward, limits)
	if err != nil {
		return nil, "", err
	}
	return out, key, nil
}

// StoreInUnit moves the item under itemKey into the storage unit under
// unitKey, bounded by StorageUnitMaxItems.
func StoreInUnit(s *Snapshot, unitKey, itemKey string, limits Limits) (*Snapshot, error) {
	unit, ok := s.Items[unitKey]
	if !ok {
		return nil, apperror.NotFound("storage unit not found in inventory").WithCode("ITEM_NOT_FOUND")
	}
	if unitKey == itemKey {
		return nil, apperror.Validation("cannot store a storage unit in itself")
	}
	if len(unit.Contents) >= limits.StorageUnitMaxItems {
		return nil, apperror.CapacityExceeded(
			fmt.Sprintf("storage unit is full (%d items)", limits.StorageUnitMaxItems))
	}

	out, it, err := Remove(s, itemKey)
	if err != nil {
		return nil, err
	}

	unit = out.Items[unitKey]
	if unit.Contents == nil {
		unit.Contents = make(map[string]Item)
	}
	unit.Contents[itemKey] = it
	out.Items[unitKey] = unit
	return out, nil
}

// TakeFromUnit moves the item under itemKey out of the storage unit under
// unitKey back into the top-level inventory.
func TakeFromUnit(s *Snapshot, unitKey, itemKey string, limits Limits) (*Snapshot, error) {
	unit, ok := s.Items[unitKey]
	if !ok {
		return nil, apperror.NotFound("storage unit not found in inventory").WithCode("ITEM_NOT_FOUND")
	}
	it, ok := unit.Contents[itemKey]
	if !ok {
		return nil, apperror.NotFound("item not found in storage unit").WithCode("ITEM_NOT_FOUND")
	}
	if s.Count() >= limits.MaxItems {
		return nil, apperror.CapacityExceeded(
			fmt.Sprintf("inventory is full (%d items)", limits.MaxItems))
	}

	out := s.Clone()
	unit = out.Items[unitKey]
	delete(unit.Contents, itemKey)
	out.Items[unitKey] = unit
	out.Items[itemKey] = it
	return out, nil
}
