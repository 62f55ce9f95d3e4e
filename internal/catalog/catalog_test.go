package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRarityNext(t *testing.T) {
	next, ok := RarityConsumer.Next()
	require.True(t, ok)
	assert.Equal(t, RarityIndustrial, next)

	next, ok = RarityCovert.Next()
	require.True(t, ok)
	assert.Equal(t, RarityContraband, next)

	_, ok = RarityContraband.Next()
	assert.False(t, ok)

	_, ok = Rarity("made up").Next()
	assert.False(t, ok)
}

func TestRarityWeightOrdering(t *testing.T) {
	prev := RarityConsumer.Weight()
	for _, r := range []Rarity{RarityIndustrial, RarityMilSpec, RarityRestricted, RarityClassified, RarityCovert, RarityContraband} {
		assert.Less(t, r.Weight(), prev, "weight must shrink as rarity climbs: %s", r)
		prev = r.Weight()
	}
	assert.Equal(t, 1, Rarity("made up").Weight())
}

func TestStaticCatalogLookup(t *testing.T) {
	cat := NewStatic([]Item{
		{ID: 1, Name: "AK-47", Rarity: RarityCovert, Type: TypeWeapon},
		{ID: 2, Name: "P250", Rarity: RarityMilSpec, Type: TypeWeapon},
		{ID: 3, Name: "Crown", Rarity: RarityCovert, Type: TypeSticker},
	})

	got, ok := cat.GetByID(1)
	require.True(t, ok)
	assert.Equal(t, "AK-47", got.Name)

	_, ok = cat.GetByID(99)
	assert.False(t, ok)

	coverts := cat.ItemsByRarity(RarityCovert, "")
	assert.Len(t, coverts, 2)

	covertWeapons := cat.ItemsByRarity(RarityCovert, TypeWeapon)
	require.Len(t, covertWeapons, 1)
	assert.Equal(t, 1, covertWeapons[0].ID)
}

func TestItemCategoryPredicates(t *testing.T) {
	cases := []struct {
		category    string
		isContainer bool
	}{
		{CategoryWeaponCase, true},
		{CategoryStickerCapsule, true},
		{CategoryGraffitiBox, true},
		{CategorySouvenirCase, true},
		{CategoryWeapon, false},
		{CategoryKey, false},
		{CategoryStorageUnit, false},
	}
	for _, tc := range cases {
		it := Item{Category: tc.category}
		assert.Equal(t, tc.isContainer, it.IsContainer(), tc.category)
	}

	key := Item{Category: CategoryKey}
	unit := Item{Category: CategoryStorageUnit}
	assert.True(t, key.IsKey())
	assert.True(t, unit.IsStorageUnit())
}
