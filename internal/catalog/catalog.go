// Package catalog owns the two-level catalog: categories referencing item keys
// and the item table itself. All mutations go through Store, which keeps
// referential integrity and rewrites the persisted tables on every commit.
package catalog

import (
	"sort"

	"github.com/m3rciful/shopbot/internal/shoperr"
)

// Item is a sellable digital good.
type Item struct {
	Name     string  `json:"name"`
	PriceBTC float64 `json:"price_btc"`
	FilePath string  `json:"file_path"`
}

// Field names accepted by EditItemField.
const (
	FieldName  = "name"
	FieldPrice = "price_btc"
	FieldPath  = "file_path"
)

// tables is the in-memory image of the two persisted files.
type tables struct {
	categories map[string][]string
	items      map[string]Item
}

func newTables() tables {
	return tables{
		categories: make(map[string][]string),
		items:      make(map[string]Item),
	}
}

func (t tables) clone() tables {
	c := tables{
		categories: make(map[string][]string, len(t.categories)),
		items:      make(map[string]Item, len(t.items)),
	}
	for k, keys := range t.categories {
		c.categories[k] = append([]string(nil), keys...)
	}
	for k, it := range t.items {
		c.items[k] = it
	}
	return c
}

func (t tables) categoryKeys() []string {
	keys := make([]string, 0, len(t.categories))
	for k := range t.categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t tables) itemKeys() []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stripItemKey removes key from every category list, covering the case of an
// item referenced by more than one category.
func (t tables) stripItemKey(key string) {
	for cat, keys := range t.categories {
		kept := keys[:0]
		for _, k := range keys {
			if k != key {
				kept = append(kept, k)
			}
		}
		t.categories[cat] = kept
	}
}

// ValidKey reports whether key matches the lowercase-alphanumeric rule.
// The rule implicitly rejects the ':' delimiter of the callback grammar.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return shoperr.New(shoperr.InvalidKey, "key %q must be lowercase letters and digits only", key)
	}
	return nil
}
