// Package model loads fitted tolerance classifiers and exposes them behind a
// small batch-prediction interface.
package model

import "github.com/SmartBottle/Recommender/internal/features"

// Classifier is a fitted model over rows ordered by FeatureColumns.
// Implementations must be safe for concurrent use.
type Classifier interface {
	FeatureColumns() []string
	// Classes returns the known labels. PredictProba columns follow this order.
	Classes() []string
	PredictProba(batch []features.FeatureVector) ([][]float64, error)
	Predict(batch []features.FeatureVector) ([]string, error)
}
