package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/config"
	"github.com/SmartBottle/Recommender/internal/hermes"
)

func NewRouter(s Scorer, c catalog.Store, h hermes.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware(cfg.Server.CORSOrigins))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	recommend := NewRecommendHandler(s, h, cfg.Recommend, logger)
	formulas := NewFormulasHandler(c)

	r.Get("/", rootHandler)
	r.Get("/health", healthHandler(s, c))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", recommend.Recommend)
		r.Post("/predict", recommend.Predict)
		r.Get("/formulas", formulas.List)
		r.Get("/formulas/{id}", formulas.Get)
	})

	return r
}

func NewMetricsRouter(s Scorer, c catalog.Store) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", healthHandler(s, c))
	r.Handle("/metrics", promhttp.Handler())
	return r
}
