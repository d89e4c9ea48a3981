package hermes

import (
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	SubjectPrefix = "smartbottle"

	StreamName   = "RECOMMENDER_EVENTS"
	StreamMaxAge = 7 * 24 * time.Hour
)

// streamConfig describes the stream that retains served-recommendation events.
func streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPrefix + ".>"},
		MaxAge:   StreamMaxAge,
	}
}

func SubjectRecommendServed(recommendationID string) string {
	return SubjectPrefix + ".recommend." + recommendationID + ".served"
}

func SubjectPredictServed(recommendationID string) string {
	return SubjectPrefix + ".predict." + recommendationID + ".served"
}
