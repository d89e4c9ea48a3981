package api

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SmartBottle/Recommender/internal/hermes"
	"github.com/SmartBottle/Recommender/internal/metrics"
)

type eventPublisher struct {
	client hermes.Client
	logger *slog.Logger
}

// served assigns a recommendation id and publishes the served event if an
// event bus is configured. Publish errors are logged and otherwise ignored.
func (p *eventPublisher) served(op, modelVersion string, formulaIDs []int) string {
	id := uuid.NewString()
	if p.client == nil {
		return id
	}

	subject := hermes.SubjectRecommendServed(id)
	if op == metrics.OpPredict {
		subject = hermes.SubjectPredictServed(id)
	}
	evt := hermes.RecommendationServedEvent{
		RecommendationID: id,
		Operation:        op,
		ModelVersion:     modelVersion,
		FormulaIDs:       formulaIDs,
		Timestamp:        time.Now().UTC(),
	}
	if err := p.client.Publish(subject, evt); err != nil {
		p.logger.Warn("failed to publish served event", "subject", subject, "error", err)
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return id
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return id
}
