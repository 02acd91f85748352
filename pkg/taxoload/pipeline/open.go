package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/cognicore/taxoload/pkg/taxoload/config"
	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/localize"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
	"github.com/cognicore/taxoload/pkg/taxoload/store"
	"github.com/cognicore/taxoload/pkg/taxoload/store/csvstore"
	"github.com/cognicore/taxoload/pkg/taxoload/store/memstore"
	"github.com/cognicore/taxoload/pkg/taxoload/store/sqlite"
)

// OpenStore opens the backend selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverCSV:
		st, err := csvstore.Open(cfg.OutputRoot())
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverSQLite:
		path := cfg.StorePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		return sqlite.OpenSQLite(ctx, path)
	case config.DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, cfg.Store.Driver)
	}
}

// LocalizationSource builds the translation source selected by cfg.
func LocalizationSource(cfg config.Config, loader *source.Loader, logger *log.Logger) (localize.Source, error) {
	switch cfg.Localization.Source {
	case config.LocalizationDist:
		return localize.NewDistSource(loader, logger), nil
	case config.LocalizationYAML:
		return localize.NewYAMLSource(cfg.Localization.YAMLDir, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown localization source %q", internalerr.ErrInvalidConfig, cfg.Localization.Source)
	}
}

// FromConfig wires a pipeline from cfg. The caller closes the returned
// store.
func FromConfig(ctx context.Context, cfg config.Config, logger *log.Logger) (*Pipeline, store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	loader, err := source.NewLoader(cfg.DistDir(), cfg.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	src, err := LocalizationSource(cfg, loader, logger)
	if err != nil {
		return nil, nil, err
	}
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	var manifest string
	if cfg.Store.Driver != config.DriverMemory {
		manifest = filepath.Join(cfg.OutputRoot(), ManifestFile)
	}
	return New(Options{
		Config:       cfg,
		Store:        st,
		Loader:       loader,
		Localization: src,
		Logger:       logger,
		ManifestPath: manifest,
	}), st, nil
}
