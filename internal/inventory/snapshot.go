package inventory

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CurrentVersion is the blob format version written by Serialize.
const CurrentVersion = 2

// Sticker is one sticker placement on an item.
type Sticker struct {
	Slot int      `json:"slot"`
	ID   int      `json:"id"`
	Wear *float64 `json:"wear,omitempty"`
}

// Item is the single internal representation of one held item. Legacy items
// (pre-UUID, keyed by a per-user integer UID) and current items are folded
// into this shape at the codec boundary; nothing downstream branches on the
// key format again. Exactly one of UUID or UID identifies a decoded item.
type Item struct {
	ID       int             `json:"id"`
	Wear     *float64        `json:"wear,omitempty"`
	Seed     *int            `json:"seed,omitempty"`
	NameTag  string          `json:"nameTag,omitempty"`
	StatTrak bool            `json:"statTrak,omitempty"`
	Stickers []Sticker       `json:"stickers,omitempty"`
	UUID     string          `json:"uuid,omitempty"`
	UID      int64           `json:"uid,omitempty"`
	Contents map[string]Item `json:"contents,omitempty"`
}

// Key returns the snapshot key for the item: its UUID when present, the
// legacy decimal UID otherwise.
func (it Item) Key() string {
	if it.UUID != "" {
		return it.UUID
	}
	return strconv.FormatInt(it.UID, 10)
}

// Snapshot is the complete state of one user's inventory.
type Snapshot struct {
	Version int             `json:"version"`
	Items   map[string]Item `json:"items"`
}

// NewSnapshot returns an empty current-version snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Version: CurrentVersion, Items: make(map[string]Item)}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Version: s.Version, Items: make(map[string]Item, len(s.Items))}
	for k, it := range s.Items {
		out.Items[k] = cloneItem(it)
	}
	return out
}

func cloneItem(it Item) Item {
	if it.Stickers != nil {
		stickers := make([]Sticker, len(it.Stickers))
		copy(stickers, it.Stickers)
		it.Stickers = stickers
	}
	if it.Contents != nil {
		contents := make(map[string]Item, len(it.Contents))
		for k, nested := range it.Contents {
			contents[k] = cloneItem(nested)
		}
		it.Contents = contents
	}
	return it
}

// Count returns the number of live top-level entries.
func (s *Snapshot) Count() int {
	return len(s.Items)
}

// IsUUIDKey reports whether key uses the current UUID scheme. A key is
// UUID-scheme iff it contains a hyphen, which never appears in a legacy
// decimal UID. This rule is load-bearing: it decides which identity field a
// decoded item carries.
func IsUUIDKey(key string) bool {
	return strings.Contains(key, "-")
}

// Parse decodes a persisted inventory blob. It returns nil for empty or
// malformed input; callers must treat nil as "no inventory yet", not as an
// error. Both key schemes are tolerated and normalized: every decoded item
// ends up carrying its UUID or legacy UID.
func Parse(raw []byte) *Snapshot {
	if len(raw) == 0 {
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	if snap.Items == nil {
		snap.Items = make(map[string]Item)
	}

	for key, it := range snap.Items {
		if IsUUIDKey(key) {
			if it.UUID == "" {
				it.UUID = key
			}
		} else {
			uid, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil
			}
			if it.UID == 0 {
				it.UID = uid
			}
		}
		snap.Items[key] = it
	}

	return &snap
}

// Serialize encodes the snapshot to its persisted form.
func Serialize(s *Snapshot) ([]byte, error) {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	return json.Marshal(s)
}

// ParseOrEmpty decodes a persisted blob, substituting an empty snapshot for
// missing or invalid input.
func ParseOrEmpty(raw []byte) *Snapshot {
	if snap := Parse(raw); snap != nil {
		return snap
	}
	return NewSnapshot()
}
