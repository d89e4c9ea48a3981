package scoring

import (
	"github.com/SmartBottle/Recommender/internal/features"
)

// Predict scores exactly one baby×formula pair and returns the full class
// distribution. Unknown ids fail with catalog.ErrFormulaNotFound.
func (e *Engine) Predict(baby features.BabyProfile, formulaID int) (*PredictionResult, error) {
	formula, err := e.catalog.Get(formulaID)
	if err != nil {
		return nil, err
	}

	batch := []features.FeatureVector{e.encoder.Encode(baby, formula)}
	probs, labels, err := e.classify(batch)
	if err != nil {
		return nil, err
	}

	dist := make(map[string]float64, len(e.classes))
	for i, c := range e.classes {
		dist[c] = probs[0][i]
	}

	result := &PredictionResult{
		FormulaID:          formula.FormulaID,
		FormulaBrand:       formula.Brand,
		PredictedTolerance: labels[0],
		GoodProbability:    probs[0][e.goodIndex],
		Probabilities:      dist,
	}

	e.logger.Info("prediction",
		"formula_id", formulaID,
		"predicted_tolerance", result.PredictedTolerance,
		"good_probability", result.GoodProbability,
	)
	return result, nil
}
