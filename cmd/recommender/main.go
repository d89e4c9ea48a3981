package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SmartBottle/Recommender/internal/api"
	"github.com/SmartBottle/Recommender/internal/config"
	"github.com/SmartBottle/Recommender/internal/hermes"
	"github.com/SmartBottle/Recommender/internal/metrics"
	"github.com/SmartBottle/Recommender/internal/scoring"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog + model
	store, clf, err := loadResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	logger.Info("resources loaded", "formulas", store.Len(), "model", clf.Version(), "samples", clf.NumSamples())

	engine, err := scoring.NewEngine(store, clf, clf.Version(), logger)
	if err != nil {
		logger.Error("failed to build scoring engine", "error", err)
		os.Exit(1)
	}

	metrics.Init()
	metrics.CatalogSize.Set(float64(store.Len()))

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			bc := hermes.NewBreakerClient(hc, hermes.DefaultBreakerConfig(), logger)
			hermesClient = bc
			defer bc.Close()
			logger.Info("connected to hermes")
		}
	}

	// API server
	router := api.NewRouter(engine, store, hermesClient, cfg, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(engine, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runServers(sigCtx, logger,
		namedServer{name: "api", srv: apiServer},
		namedServer{name: "metrics", srv: metricsServer},
	)
	if err != nil {
		logger.Error("server failed", "error", err)
		if hermesClient != nil {
			hermesClient.Close()
		}
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
