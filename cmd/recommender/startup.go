package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/config"
	"github.com/SmartBottle/Recommender/internal/model"
)

// loadResources loads the catalog and the model artifact concurrently. The
// first failure cancels the other load and is returned.
func loadResources(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.MemoryStore, *model.KNNClassifier, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout())
	defer cancel()

	loader, err := catalog.NewLoader(cfg.Catalog.Source, cfg.Database.URL, cfg.Catalog.CSVPath, logger)
	if err != nil {
		return nil, nil, err
	}

	var (
		store *catalog.MemoryStore
		clf   *model.KNNClassifier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := catalog.Load(gctx, loader)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		store = s
		return nil
	})
	g.Go(func() error {
		m, err := model.Load(cfg.Model.Path)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		clf = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return store, clf, nil
}
