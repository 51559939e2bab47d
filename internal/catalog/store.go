package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// Options configure a Store.
type Options struct {
	Dir            string
	CategoriesFile string
	ItemsFile      string
	// Stat overrides asset existence checks; defaults to os.Stat.
	Stat func(string) (fs.FileInfo, error)
}

// Store owns both catalog tables behind a single mutation-serializing lock.
// Every successful mutation rewrites the affected persisted file(s) before it
// returns; a failed write rolls the in-memory state back untouched.
type Store struct {
	mu             sync.RWMutex
	t              tables
	categoriesPath string
	itemsPath      string
	stat           func(string) (fs.FileInfo, error)
}

// Open loads the persisted tables, or starts empty when no files exist yet.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		opts.Dir = "data"
	}
	if opts.CategoriesFile == "" {
		opts.CategoriesFile = "categories.json"
	}
	if opts.ItemsFile == "" {
		opts.ItemsFile = "items.json"
	}
	stat := opts.Stat
	if stat == nil {
		stat = os.Stat
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}

	s := &Store{
		t:              newTables(),
		categoriesPath: filepath.Join(opts.Dir, opts.CategoriesFile),
		itemsPath:      filepath.Join(opts.Dir, opts.ItemsFile),
		stat:           stat,
	}

	start := time.Now()
	if err := loadJSON(s.categoriesPath, &s.t.categories); err != nil {
		return nil, fmt.Errorf("store: load categories: %w", err)
	}
	if err := loadJSON(s.itemsPath, &s.t.items); err != nil {
		return nil, fmt.Errorf("store: load items: %w", err)
	}
	for cat, keys := range s.t.categories {
		for _, key := range keys {
			if _, ok := s.t.items[key]; !ok {
				return nil, fmt.Errorf("store: category %q references missing item %q", cat, key)
			}
		}
	}

	logger.Info(logger.Background(), "store", "store.open",
		slog.String("status", "ok"),
		slog.String("path", s.categoriesPath),
		slog.Int("count", len(s.t.items)),
		slog.Duration("duration", time.Since(start)),
	)
	return s, nil
}

// Empty reports whether both tables are empty (fresh install).
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.t.categories) == 0 && len(s.t.items) == 0
}

// AddCategory creates an empty category under key.
func (s *Store) AddCategory(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.categories[key]; ok {
		return shoperr.New(shoperr.DuplicateKey, "category %q already exists", key)
	}
	next := s.t.clone()
	next.categories[key] = []string{}
	return s.commit(next, true, false, "category.add", slog.String("category", key))
}

// RenameCategory moves the item list from oldKey to newKey, preserving order.
func (s *Store) RenameCategory(oldKey, newKey string) error {
	if err := checkKey(newKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, ok := s.t.categories[oldKey]
	if !ok {
		return shoperr.New(shoperr.NotFound, "category %q not found", oldKey)
	}
	if _, exists := s.t.categories[newKey]; exists {
		return shoperr.New(shoperr.DuplicateKey, "category %q already exists", newKey)
	}
	next := s.t.clone()
	delete(next.categories, oldKey)
	next.categories[newKey] = append([]string(nil), keys...)
	return s.commit(next, true, false, "category.rename",
		slog.String("category", oldKey),
		slog.String("operation", "rename:"+newKey),
	)
}

// DeleteCategory removes the category. Referenced items stay in the item
// table and become orphaned.
func (s *Store) DeleteCategory(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.categories[key]; !ok {
		return shoperr.New(shoperr.NotFound, "category %q not found", key)
	}
	next := s.t.clone()
	delete(next.categories, key)
	return s.commit(next, true, false, "category.delete", slog.String("category", key))
}

// AddItem inserts a new item and appends its key to the given category.
func (s *Store) AddItem(key, name string, priceBTC float64, filePath, category string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if name == "" {
		return shoperr.New(shoperr.MalformedRequest, "item name must not be empty")
	}
	if priceBTC <= 0 {
		return shoperr.New(shoperr.InvalidPrice, "price must be positive, got %v", priceBTC)
	}
	if err := s.checkAsset(filePath); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.items[key]; ok {
		return shoperr.New(shoperr.DuplicateKey, "item %q already exists", key)
	}
	if _, ok := s.t.categories[category]; !ok {
		return shoperr.New(shoperr.NotFound, "category %q not found", category)
	}
	next := s.t.clone()
	next.items[key] = Item{Name: name, PriceBTC: priceBTC, FilePath: filePath}
	next.categories[category] = append(next.categories[category], key)
	return s.commit(next, true, true, "item.add",
		slog.String("item_key", key),
		slog.String("category", category),
		slog.Float64("amount_btc", priceBTC),
	)
}

// EditItemField updates one field of an existing item, with the same
// validation as AddItem for that field.
func (s *Store) EditItemField(key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.t.items[key]
	if !ok {
		return shoperr.New(shoperr.NotFound, "item %q not found", key)
	}
	switch field {
	case FieldName:
		if value == "" {
			return shoperr.New(shoperr.MalformedRequest, "item name must not be empty")
		}
		item.Name = value
	case FieldPrice:
		price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || price <= 0 {
			return shoperr.New(shoperr.InvalidPrice, "price must be a positive number, got %q", value)
		}
		item.PriceBTC = price
	case FieldPath:
		if err := s.checkAsset(value); err != nil {
			return err
		}
		item.FilePath = value
	default:
		return shoperr.New(shoperr.MalformedRequest, "unknown item field %q", field)
	}
	next := s.t.clone()
	next.items[key] = item
	return s.commit(next, false, true, "item.edit",
		slog.String("item_key", key),
		slog.String("field", field),
	)
}

// MoveItem reassigns the item to newCategory, removing it from every category
// that currently references it.
func (s *Store) MoveItem(key, newCategory string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.items[key]; !ok {
		return shoperr.New(shoperr.NotFound, "item %q not found", key)
	}
	if _, ok := s.t.categories[newCategory]; !ok {
		return shoperr.New(shoperr.NotFound, "category %q not found", newCategory)
	}
	next := s.t.clone()
	next.stripItemKey(key)
	next.categories[newCategory] = append(next.categories[newCategory], key)
	return s.commit(next, true, false, "item.move",
		slog.String("item_key", key),
		slog.String("category", newCategory),
	)
}

// DeleteItem removes the item record and strips its key from every category.
func (s *Store) DeleteItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.items[key]; !ok {
		return shoperr.New(shoperr.NotFound, "item %q not found", key)
	}
	next := s.t.clone()
	delete(next.items, key)
	next.stripItemKey(key)
	return s.commit(next, true, true, "item.delete", slog.String("item_key", key))
}

// Seed replaces both tables wholesale. Used for first-run defaults only.
func (s *Store) Seed(categories map[string][]string, items map[string]Item) error {
	for cat, keys := range categories {
		if !ValidKey(cat) {
			return shoperr.New(shoperr.InvalidKey, "seed category %q invalid", cat)
		}
		for _, key := range keys {
			if _, ok := items[key]; !ok {
				return shoperr.New(shoperr.NotFound, "seed category %q references missing item %q", cat, key)
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := newTables()
	for cat, keys := range categories {
		next.categories[cat] = append([]string(nil), keys...)
	}
	for key, it := range items {
		next.items[key] = it
	}
	return s.commit(next, true, true, "store.seed", slog.Int("count", len(items)))
}

// Categories returns category keys in stable (sorted) order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.categoryKeys()
}

// HasCategory reports whether the category exists.
func (s *Store) HasCategory(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.t.categories[key]
	return ok
}

// ItemsIn returns the item keys of a category in insertion order.
func (s *Store) ItemsIn(category string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys, ok := s.t.categories[category]
	if !ok {
		return nil, shoperr.New(shoperr.NotFound, "category %q not found", category)
	}
	return append([]string(nil), keys...), nil
}

// Item returns the item record for key.
func (s *Store) Item(key string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.t.items[key]
	if !ok {
		return Item{}, shoperr.New(shoperr.NotFound, "item %q not found", key)
	}
	return item, nil
}

// ItemKeys returns all item keys in stable (sorted) order.
func (s *Store) ItemKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.itemKeys()
}

func (s *Store) checkAsset(path string) error {
	if path == "" {
		return shoperr.New(shoperr.AssetMissing, "file path must not be empty")
	}
	if _, err := s.stat(path); err != nil {
		return shoperr.Wrap(shoperr.AssetMissing, err, "asset %q not found", path)
	}
	return nil
}

// commit persists the affected table(s) from next and swaps it in. The caller
// must hold the write lock. On persist failure the previous state stays.
func (s *Store) commit(next tables, saveCategories, saveItems bool, event string, attrs ...slog.Attr) error {
	start := time.Now()
	if saveCategories {
		if err := writeJSON(s.categoriesPath, next.categories); err != nil {
			s.logCommit(event, start, err, attrs)
			return fmt.Errorf("store: persist categories: %w", err)
		}
	}
	if saveItems {
		if err := writeJSON(s.itemsPath, next.items); err != nil {
			// Best effort: rewrite the categories file from the kept state so
			// both files describe the same catalog again.
			if saveCategories {
				_ = writeJSON(s.categoriesPath, s.t.categories)
			}
			s.logCommit(event, start, err, attrs)
			return fmt.Errorf("store: persist items: %w", err)
		}
	}
	s.t = next
	s.logCommit(event, start, nil, attrs)
	return nil
}

func (s *Store) logCommit(event string, start time.Time, err error, attrs []slog.Attr) {
	out := make([]slog.Attr, 0, len(attrs)+3)
	out = append(out, slog.String("status", logger.Status(err)))
	out = append(out, attrs...)
	out = append(out, slog.Duration("duration", time.Since(start)))
	if err != nil {
		out = append(out, slog.String("err", err.Error()))
		logger.Error(logger.Background(), "store", event, out...)
		return
	}
	logger.Info(logger.Background(), "store", event, out...)
}

func loadJSON[T any](path string, dst *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

// writeJSON rewrites the file wholesale via a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
