package catalog

// Rarity is one tier of the ordered item classification.
type Rarity string

// Rarity tiers, lowest to highest.
const (
	RarityConsumer   Rarity = "consumer grade"
	RarityIndustrial Rarity = "industrial grade"
	RarityMilSpec    Rarity = "mil-spec grade"
	RarityRestricted Rarity = "restricted"
	RarityClassified Rarity = "classified"
	RarityCovert     Rarity = "covert"
	RarityContraband Rarity = "contraband"
)

// rarityOrder defines the tier ladder used for trade-ups and reward weighting.
var rarityOrder = []Rarity{
	RarityConsumer,
	RarityIndustrial,
	RarityMilSpec,
	RarityRestricted,
	RarityClassified,
	RarityCovert,
	RarityContraband,
}

// rarityWeights maps each tier to its container-unlock weight. Lower rarity
// draws with higher weight.
var rarityWeights = map[Rarity]int{
	RarityConsumer:   800,
	RarityIndustrial: 400,
	RarityMilSpec:    160,
	RarityRestricted: 32,
	RarityClassified: 6,
	RarityCovert:     2,
	RarityContraband: 1,
}

// Next returns the tier immediately above r, or false if r is the maximum
// tier or unknown.
func (r Rarity) Next() (Rarity, bool) {
	for i, tier := range rarityOrder {
		if tier == r {
			if i == len(rarityOrder)-1 {
				return "", false
			}
			return rarityOrder[i+1], true
		}
	}
	return "", false
}

// Weight returns the container-unlock weight for r. Unknown rarities weigh 1.
func (r Rarity) Weight() int {
	if w, ok := rarityWeights[r]; ok {
		return w
	}
	return 1
}

// IsValid reports whether r is a known tier.
func (r Rarity) IsValid() bool {
	_, ok := rarityWeights[r]
	return ok
}

// Item types, the broad kind an item instance belongs to. Trade-ups only
// combine items of one type.
const (
	TypeWeapon   = "weapon"
	TypeSticker  = "sticker"
	TypeGraffiti = "graffiti"
)

// Item categories as supplied by the item-definition catalog.
const (
	CategoryWeapon         = "weapon"
	CategorySticker        = "sticker"
	CategoryGraffiti       = "graffiti"
	CategoryWeaponCase     = "weapon_case"
	CategoryStickerCapsule = "sticker_capsule"
	CategoryGraffitiBox    = "graffiti_box"
	CategorySouvenirCase   = "souvenir_case"
	CategoryKey            = "key"
	CategoryStorageUnit    = "storage_unit"
)

// Item is the static definition of one catalog entry. The catalog is a
// read-only external collaborator; the core never mutates it.
type Item struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Rarity   Rarity `json:"rarity"`
	Type     string `json:"type"`
	Category string `json:"category"`

	// RequiredKeyID is the catalog id of the key needed to unlock this
	// container, or 0 if it opens without one.
	RequiredKeyID int `json:"required_key_id,omitempty"`

	// Contents lists the catalog ids a container can yield.
	Contents []int `json:"contents,omitempty"`
}

// IsWeaponCase reports whether the item is a weapon case.
func (i *Item) IsWeaponCase() bool { return i.Category == CategoryWeaponCase }

// IsStickerCapsule reports whether the item is a sticker capsule.
func (i *Item) IsStickerCapsule() bool { return i.Category == CategoryStickerCapsule }

// IsGraffitiBox reports whether the item is a graffiti box.
func (i *Item) IsGraffitiBox() bool { return i.Category == CategoryGraffitiBox }

// IsSouvenirCase reports whether the item is a souvenir case.
func (i *Item) IsSouvenirCase() bool { return i.Category == CategorySouvenirCase }

// IsContainer reports whether the item can be unlocked for a reward.
func (i *Item) IsContainer() bool {
	return i.IsWeaponCase() || i.IsStickerCapsule() || i.IsGraffitiBox() || i.IsSouvenirCase()
}

// IsKey reports whether the item is a container key.
func (i *Item) IsKey() bool { return i.Category == CategoryKey }

// IsStorageUnit reports whether the item holds a nested sub-inventory.
func (i *Item) IsStorageUnit() bool { return i.Category == CategoryStorageUnit }

// Catalog is the read-only item-definition lookup the core depends on.
type Catalog interface {
	// GetByID returns the definition for a catalog id.
	GetByID(id int) (*Item, bool)

	// ItemsByRarity returns all items of the given tier. itemType filters by
	// Type when non-empty.
	ItemsByRarity(rarity Rarity, itemType string) []*Item
}

// Static is an in-memory Catalog built from a fixed item list.
type Static struct {
	byID map[int]*Item
	all  []*Item
}

// NewStatic creates a catalog from a fixed item list.
func NewStatic(items []Item) *Static {
	c := &Static{byID: make(map[int]*Item, len(items))}
	for i := range items {
		it := items[i]
		c.byID[it.ID] = &it
		c.all = append(c.all, &it)
	}
	return c
}

// GetByID returns the definition for a catalog id.
func (c *Static) GetByID(id int) (*Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// ItemsByRarity returns all items of the given tier, optionally filtered by type.
func (c *Static) ItemsByRarity(rarity Rarity, itemType string) []*Item {
	var out []*Item
	for _, it := range c.all {
		if it.Rarity != rarity {
			continue
		}
		if itemType != "" && it.Type != itemType {
			continue
		}
		out = append(out, it)
	}
	return out
}

var _ Catalog = (*Static)(nil)
