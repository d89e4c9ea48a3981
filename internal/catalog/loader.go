package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	SourceDatabase = "database"
	SourceCSV      = "csv"
	SourceAuto     = "auto"
)

// Loader fetches the raw product list from a backing source.
type Loader interface {
	LoadFormulas(ctx context.Context) ([]FormulaProduct, error)
}

type CSVLoader struct {
	Path string
}

func (l CSVLoader) LoadFormulas(_ context.Context) ([]FormulaProduct, error) {
	return LoadCSV(l.Path)
}

// DatabaseLoader opens a short-lived connection pool, reads the formulas
// table and closes the pool again. Loading only happens at startup.
type DatabaseLoader struct {
	URL string
}

func (l DatabaseLoader) LoadFormulas(ctx context.Context) ([]FormulaProduct, error) {
	s, err := NewPostgresStore(ctx, l.URL)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.LoadFormulas(ctx)
}

// FallbackLoader tries Primary and falls back to Fallback on any error.
type FallbackLoader struct {
	Primary  Loader
	Fallback Loader
	Logger   *slog.Logger
}

func (l FallbackLoader) LoadFormulas(ctx context.Context) ([]FormulaProduct, error) {
	formulas, err := l.Primary.LoadFormulas(ctx)
	if err == nil && len(formulas) > 0 {
		return formulas, nil
	}
	if l.Logger != nil {
		if err != nil {
			l.Logger.Warn("could not load formulas from primary source, falling back", "error", err)
		} else {
			l.Logger.Warn("primary source returned no formulas, falling back")
		}
	}
	return l.Fallback.LoadFormulas(ctx)
}

// NewLoader picks the loader for the configured source. In auto mode an
// empty database URL means CSV only.
func NewLoader(source, databaseURL, csvPath string, logger *slog.Logger) (Loader, error) {
	switch source {
	case SourceDatabase:
		if databaseURL == "" {
			return nil, fmt.Errorf("catalog source %q requires a database url", source)
		}
		return DatabaseLoader{URL: databaseURL}, nil
	case SourceCSV:
		return CSVLoader{Path: csvPath}, nil
	case SourceAuto, "":
		if databaseURL == "" {
			return CSVLoader{Path: csvPath}, nil
		}
		return FallbackLoader{
			Primary:  DatabaseLoader{URL: databaseURL},
			Fallback: CSVLoader{Path: csvPath},
			Logger:   logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", source)
	}
}

// Load runs the loader and freezes the result into a MemoryStore.
func Load(ctx context.Context, l Loader) (*MemoryStore, error) {
	formulas, err := l.LoadFormulas(ctx)
	if errors.Is(err, ErrCatalogLoad) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	return NewMemoryStore(formulas)
}
