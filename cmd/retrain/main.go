// Command retrain fits a new k-NN artifact from feeding logs and the formula
// catalog and writes it where the recommender can load it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/model"
	"github.com/SmartBottle/Recommender/internal/training"
)

func main() {
	logsPath := flag.String("logs", "data/raw/feeding_logs.csv", "path to feeding logs CSV")
	formulasPath := flag.String("formulas", "data/raw/formula_master.csv", "path to formula master CSV")
	dbURL := flag.String("db-url", os.Getenv("RECOMMENDER_DATABASE_URL"), "load formulas from Postgres, falling back to -formulas")
	outPath := flag.String("out", "models/trained/knn_v1_retrained.json", "artifact output path")
	version := flag.String("version", "", "artifact version (default: output file name)")
	neighbors := flag.Int("k", 5, "number of neighbours")
	weights := flag.String("weights", model.WeightsDistance, "neighbour weights: distance or uniform")
	testSize := flag.Float64("test-size", 0.2, "held-out fraction for evaluation; 0 fits on everything")
	seed := flag.Uint64("seed", 42, "split seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	loader, err := catalog.NewLoader(catalog.SourceAuto, *dbURL, *formulasPath, logger)
	if err != nil {
		logger.Error("invalid catalog source", "error", err)
		os.Exit(1)
	}
	store, err := catalog.Load(ctx, loader)
	if err != nil {
		logger.Error("failed to load formulas", "error", err)
		os.Exit(1)
	}

	logs, err := training.LoadFeedingLogs(*logsPath)
	if err != nil {
		logger.Error("failed to load feeding logs", "error", err)
		os.Exit(1)
	}
	examples, err := training.Join(logs, store.List())
	if err != nil {
		logger.Error("failed to join feeding logs", "error", err)
		os.Exit(1)
	}
	logger.Info("training data loaded", "formulas", store.Len(), "examples", len(examples))

	train, test := examples, []training.Example(nil)
	if *testSize > 0 {
		train, test, err = training.StratifiedSplit(examples, *testSize, *seed)
		if err != nil {
			logger.Error("failed to split", "error", err)
			os.Exit(1)
		}
		logger.Info("split", "train", len(train), "test", len(test))
	}

	opts := training.DefaultOptions()
	opts.NNeighbors = *neighbors
	opts.Weights = *weights
	opts.Version = *version
	if opts.Version == "" {
		opts.Version = strings.TrimSuffix(filepath.Base(*outPath), filepath.Ext(*outPath))
	}

	artifact, err := training.Fit(train, opts)
	if err != nil {
		logger.Error("fit failed", "error", err)
		os.Exit(1)
	}
	logger.Info("model fitted", "classes", artifact.Classes, "samples", len(artifact.Samples))

	if len(test) > 0 {
		clf, err := model.NewKNN(artifact)
		if err != nil {
			logger.Error("failed to build classifier", "error", err)
			os.Exit(1)
		}
		report, err := training.Evaluate(clf, test)
		if err != nil {
			logger.Error("evaluation failed", "error", err)
			os.Exit(1)
		}
		report.Print(os.Stdout)
		logger.Info("evaluation", "accuracy", report.Accuracy, "test", report.Total)
	}

	if err := model.Save(*outPath, artifact); err != nil {
		logger.Error("failed to save artifact", "error", err)
		os.Exit(1)
	}
	logger.Info("artifact saved", "path", *outPath, "version", opts.Version)
}
