package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/shoperr"
)

func fakeStat(existing ...string) func(string) (fs.FileInfo, error) {
	set := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		set[p] = struct{}{}
	}
	return func(path string) (fs.FileInfo, error) {
		if _, ok := set[path]; ok {
			return nil, nil
		}
		return nil, os.ErrNotExist
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{
		Dir:  t.TempDir(),
		Stat: fakeStat("items/guide.pdf", "items/other.pdf"),
	})
	require.NoError(t, err)
	return s
}

func TestAddCategoryValidation(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddCategory("ebooks"))

	err := s.AddCategory("ebooks")
	require.True(t, shoperr.IsCode(err, shoperr.DuplicateKey))

	for _, bad := range []string{"", "E-Books", "e books", "cat:1", "Ebooks"} {
		err := s.AddCategory(bad)
		require.True(t, shoperr.IsCode(err, shoperr.InvalidKey), "key %q", bad)
	}
	require.Equal(t, []string{"ebooks"}, s.Categories())
}

func TestAddItemValidation(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory("ebooks"))

	err := s.AddItem("bk1", "Guide", 0, "items/guide.pdf", "ebooks")
	require.True(t, shoperr.IsCode(err, shoperr.InvalidPrice))

	err = s.AddItem("bk1", "Guide", 0.0001, "items/nope.pdf", "ebooks")
	require.True(t, shoperr.IsCode(err, shoperr.AssetMissing))

	err = s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "missing")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))

	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))

	err = s.AddItem("bk1", "Other", 0.5, "items/guide.pdf", "ebooks")
	require.True(t, shoperr.IsCode(err, shoperr.DuplicateKey))

	keys, err := s.ItemsIn("ebooks")
	require.NoError(t, err)
	require.Equal(t, []string{"bk1"}, keys)
}

func TestRenameCategoryKeepsItems(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory("ebooks"))
	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))

	require.NoError(t, s.RenameCategory("ebooks", "guides"))

	require.False(t, s.HasCategory("ebooks"))
	keys, err := s.ItemsIn("guides")
	require.NoError(t, err)
	require.Equal(t, []string{"bk1"}, keys)

	item, err := s.Item("bk1")
	require.NoError(t, err)
	require.Equal(t, "Guide", item.Name)

	err = s.RenameCategory("missing", "other")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
	require.NoError(t, s.AddCategory("other"))
	err = s.RenameCategory("guides", "other")
	require.True(t, shoperr.IsCode(err, shoperr.DuplicateKey))
}

func TestDeleteCategoryOrphansItems(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory("ebooks"))
	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))

	require.NoError(t, s.DeleteCategory("ebooks"))

	// Item survives as an orphan.
	_, err := s.Item("bk1")
	require.NoError(t, err)
	require.Empty(t, s.Categories())

	err = s.DeleteCategory("ebooks")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
}

func TestDeleteItemStripsReferences(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory("ebooks"))
	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))
	require.NoError(t, s.AddItem("bk2", "Other", 0.0002, "items/other.pdf", "ebooks"))

	require.NoError(t, s.DeleteItem("bk1"))

	_, err := s.Item("bk1")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
	for _, cat := range s.Categories() {
		keys, err := s.ItemsIn(cat)
		require.NoError(t, err)
		require.NotContains(t, keys, "bk1")
	}
	keys, err := s.ItemsIn("ebooks")
	require.NoError(t, err)
	require.Equal(t, []string{"bk2"}, keys)
}

func TestMoveItemIsExclusive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory("ebooks"))
	require.NoError(t, s.AddCategory("videos"))
	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))

	require.NoError(t, s.MoveItem("bk1", "videos"))

	keys, err := s.ItemsIn("ebooks")
	require.NoError(t, err)
	require.Empty(t, keys)
	keys, err = s.ItemsIn("videos")
	require.NoError(t, err)
	require.Equal(t, []string{"bk1"}, keys)

	err = s.MoveItem("bk1", "missing")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
	err = s.MoveItem("missing", "videos")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
}

func TestEditItemField(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory("ebooks"))
	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))

	require.NoError(t, s.EditItemField("bk1", FieldName, "Better Guide"))
	require.NoError(t, s.EditItemField("bk1", FieldPrice, "0.0005"))
	require.NoError(t, s.EditItemField("bk1", FieldPath, "items/other.pdf"))

	item, err := s.Item("bk1")
	require.NoError(t, err)
	require.Equal(t, "Better Guide", item.Name)
	require.Equal(t, 0.0005, item.PriceBTC)
	require.Equal(t, "items/other.pdf", item.FilePath)

	err = s.EditItemField("bk1", FieldPrice, "-1")
	require.True(t, shoperr.IsCode(err, shoperr.InvalidPrice))
	err = s.EditItemField("bk1", FieldPrice, "abc")
	require.True(t, shoperr.IsCode(err, shoperr.InvalidPrice))
	err = s.EditItemField("bk1", FieldPath, "items/nope.pdf")
	require.True(t, shoperr.IsCode(err, shoperr.AssetMissing))
	err = s.EditItemField("missing", FieldName, "x")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))

	// Failed edits must not stick.
	item, err = s.Item("bk1")
	require.NoError(t, err)
	require.Equal(t, 0.0005, item.PriceBTC)
	require.Equal(t, "items/other.pdf", item.FilePath)
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stat := fakeStat("items/guide.pdf", "items/other.pdf")

	s, err := Open(Options{Dir: dir, Stat: stat})
	require.NoError(t, err)
	require.NoError(t, s.AddCategory("ebooks"))
	require.NoError(t, s.AddCategory("videos"))
	require.NoError(t, s.AddItem("bk1", "Guide", 0.0001, "items/guide.pdf", "ebooks"))
	require.NoError(t, s.AddItem("bk2", "Other", 0.0002, "items/other.pdf", "ebooks"))

	reopened, err := Open(Options{Dir: dir, Stat: stat})
	require.NoError(t, err)
	require.Equal(t, s.Categories(), reopened.Categories())
	require.Equal(t, s.ItemKeys(), reopened.ItemKeys())
	for _, cat := range s.Categories() {
		want, err := s.ItemsIn(cat)
		require.NoError(t, err)
		got, err := reopened.ItemsIn(cat)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	for _, key := range s.ItemKeys() {
		want, err := s.Item(key)
		require.NoError(t, err)
		got, err := reopened.Item(key)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestOpenRejectsOrphanReference(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.json"), []byte(`{"ebooks":["ghost"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.json"), []byte(`{}`), 0o644))

	_, err := Open(Options{Dir: dir})
	require.Error(t, err)
}

func TestCommitRollsBackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Dir: dir, Stat: fakeStat("items/guide.pdf")})
	require.NoError(t, err)
	require.NoError(t, s.AddCategory("ebooks"))

	// Make the data dir read-only so the temp-file write fails.
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err = s.AddCategory("videos")
	require.Error(t, err)
	require.False(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, os.Chmod(dir, 0o755))
	require.Equal(t, []string{"ebooks"}, s.Categories())

	// Reopen confirms the persisted state matches the kept in-memory state.
	reopened, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.Equal(t, []string{"ebooks"}, reopened.Categories())
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	items := map[string]Item{
		"bk1": {Name: "Guide", PriceBTC: 0.0001, FilePath: "items/guide.pdf"},
	}
	require.NoError(t, s.Seed(map[string][]string{"ebooks": {"bk1"}}, items))
	require.False(t, s.Empty())

	err := s.Seed(map[string][]string{"ebooks": {"ghost"}}, items)
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
}
