package scoring

import (
	"errors"

	"github.com/SmartBottle/Recommender/internal/catalog"
)

const (
	// GoodClass is the tolerance label whose probability drives ranking.
	GoodClass = "good"

	DefaultTopN        = 3
	DefaultMinGoodProb = 0.3
)

var (
	ErrClassNotFound    = errors.New("class not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrClassifierOutput = errors.New("unexpected classifier output")
)

// ScoredCandidate is one catalog product scored for a single baby profile.
type ScoredCandidate struct {
	catalog.FormulaProduct
	GoodProbability    float64 `json:"good_probability"`
	PredictedTolerance string  `json:"predicted_tolerance"`
}

// RecommendationResult holds both views of one ranking call. AllFormulas is
// the complete list in the same descending order as Recommendations.
type RecommendationResult struct {
	Recommendations []ScoredCandidate `json:"recommendations"`
	AllFormulas     []ScoredCandidate `json:"all_formulas"`
}

type PredictionResult struct {
	FormulaID          int                `json:"formula_id"`
	FormulaBrand       string             `json:"formula_brand"`
	PredictedTolerance string             `json:"predicted_tolerance"`
	GoodProbability    float64            `json:"good_probability"`
	Probabilities      map[string]float64 `json:"probabilities"`
}
