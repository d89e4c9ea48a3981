package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OpRecommend = "recommend"
	OpPredict   = "predict"

	OutcomeOK          = "ok"
	OutcomeBadRequest  = "bad_request"
	OutcomeNotFound    = "not_found"
	OutcomeServerError = "error"
)

var (
	// Handler time for scoring requests, from request decode to scoring result
	ScoringLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommender_scoring_latency_seconds",
		Help:    "Latency of scoring requests by operation, including decode and validation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_requests_total",
		Help: "Total scoring requests by operation and outcome",
	}, []string{"operation", "outcome"})

	CatalogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recommender_catalog_formulas",
		Help: "Number of formula products loaded into the catalog",
	})

	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_events_published_total",
		Help: "Recommendation events handed to the event bus by result",
	}, []string{"result"})
)

// Init registers all collectors with the default registry. Call once from main.
func Init() {
	prometheus.MustRegister(
		ScoringLatency,
		Requests,
		CatalogSize,
		EventsPublished,
	)
}

// ObserveScoring records latency since start and the request outcome.
func ObserveScoring(op, outcome string, start time.Time) {
	ScoringLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	Requests.WithLabelValues(op, outcome).Inc()
}
