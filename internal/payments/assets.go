package payments

import (
	"io"
	"os"
	"path/filepath"

	"github.com/m3rciful/shopbot/internal/shoperr"
)

// Assets opens deliverable files referenced by item records.
type Assets struct {
	// base resolves relative item paths; empty means the working directory.
	base string
}

// NewAssets builds an asset opener rooted at base.
func NewAssets(base string) *Assets {
	return &Assets{base: base}
}

// Open returns the asset stream for path, or an ASSET_MISSING failure.
// The file may have been removed since the item was created, so existence
// is checked again here at delivery time.
func (a *Assets) Open(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, shoperr.New(shoperr.AssetMissing, "item has no file path")
	}
	resolved := path
	if a.base != "" && !filepath.IsAbs(path) {
		resolved = filepath.Join(a.base, path)
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, shoperr.Wrap(shoperr.AssetMissing, err, "asset %q not available", path)
	}
	return f, nil
}
