// Package bootstrap initializes shared infrastructure before the bot runtime
// starts: logging, the catalog store, and first-run seed data.
package bootstrap

import (
	"fmt"
	"os"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/catalog"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenStore  func(coreconfig.StorageConfig) (*catalog.Store, error)
	// Seed populates a fresh store; it runs only when the store is empty.
	Seed func(*catalog.Store) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store *catalog.Store
}

// Run initializes the logger, opens the catalog store, and seeds first-run data.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	openStore := opts.OpenStore
	if openStore == nil {
		openStore = defaultOpenStore
	}
	store, err := openStore(opts.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: store initialization failed: %w", err)
	}

	if assets := opts.Config.Storage.AssetsDir; assets != "" {
		if err := os.MkdirAll(assets, 0o755); err != nil {
			return nil, fmt.Errorf("bootstrap: create assets dir: %w", err)
		}
	}

	seed := opts.Seed
	if seed == nil {
		seed = defaultSeed
	}
	if store.Empty() {
		if err := seed(store); err != nil {
			return nil, fmt.Errorf("bootstrap: seed failed: %w", err)
		}
	}

	return &Result{Store: store}, nil
}

func defaultOpenStore(cfg coreconfig.StorageConfig) (*catalog.Store, error) {
	return catalog.Open(catalog.Options{
		Dir:            cfg.Dir,
		CategoriesFile: cfg.CategoriesFile,
		ItemsFile:      cfg.ItemsFile,
	})
}

func defaultSeed(store *catalog.Store) error {
	return store.Seed(catalog.DefaultCategories(), catalog.DefaultItems())
}
