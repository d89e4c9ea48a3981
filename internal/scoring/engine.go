package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/features"
	"github.com/SmartBottle/Recommender/internal/model"
)

// Engine scores baby profiles against the formula catalog. It is built once
// at startup from an immutable catalog and classifier and holds no mutable
// state, so it is safe for concurrent use without locking.
type Engine struct {
	catalog      catalog.Store
	classifier   model.Classifier
	encoder      *features.Encoder
	classes      []string
	goodIndex    int
	modelVersion string
	logger       *slog.Logger
}

// NewEngine binds the classifier's feature columns and resolves the good
// class up front, so schema and class misconfiguration fail at startup.
func NewEngine(store catalog.Store, clf model.Classifier, modelVersion string, logger *slog.Logger) (*Engine, error) {
	enc, err := features.NewEncoder(clf.FeatureColumns())
	if err != nil {
		return nil, err
	}

	classes := clf.Classes()
	good := classIndex(classes, GoodClass)
	if good < 0 {
		return nil, fmt.Errorf("%w: %q not in %v", ErrClassNotFound, GoodClass, classes)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:      store,
		classifier:   clf,
		encoder:      enc,
		classes:      classes,
		goodIndex:    good,
		modelVersion: modelVersion,
		logger:       logger,
	}, nil
}

func classIndex(classes []string, name string) int {
	for i, c := range classes {
		if c == name {
			return i
		}
	}
	return -1
}

func (e *Engine) ModelVersion() string { return e.modelVersion }

func (e *Engine) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Rank scores every catalog product for baby in a single classifier call.
// AllFormulas is the full list stable-sorted by good probability descending;
// Recommendations keeps the entries with probability >= minGoodProb, cut to
// the first topN.
func (e *Engine) Rank(baby features.BabyProfile, topN int, minGoodProb float64) (*RecommendationResult, error) {
	if topN < 0 {
		return nil, fmt.Errorf("%w: top_n must be >= 0, got %d", ErrInvalidArgument, topN)
	}
	if math.IsNaN(minGoodProb) || minGoodProb < 0 || minGoodProb > 1 {
		return nil, fmt.Errorf("%w: min_good_prob must be in [0,1], got %v", ErrInvalidArgument, minGoodProb)
	}

	formulas := e.catalog.List()
	batch := e.encoder.EncodeBatch(baby, formulas)

	probs, labels, err := e.classify(batch)
	if err != nil {
		return nil, err
	}

	all := make([]ScoredCandidate, len(formulas))
	for i, f := range formulas {
		all[i] = ScoredCandidate{
			FormulaProduct:     f,
			GoodProbability:    probs[i][e.goodIndex],
			PredictedTolerance: labels[i],
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].GoodProbability > all[j].GoodProbability
	})

	recs := make([]ScoredCandidate, 0, min(topN, len(all)))
	eligible := 0
	for _, c := range all {
		if c.GoodProbability < minGoodProb {
			continue
		}
		eligible++
		if len(recs) < topN {
			recs = append(recs, c)
		}
	}

	e.logger.Info("generated recommendations",
		"returned", len(recs),
		"eligible", eligible,
		"catalog", len(all),
		"model_version", e.modelVersion,
	)

	return &RecommendationResult{Recommendations: recs, AllFormulas: all}, nil
}

// classify runs one probability call and one label call over the batch and
// checks both are shaped like the batch and the class list.
func (e *Engine) classify(batch []features.FeatureVector) ([][]float64, []string, error) {
	probs, err := e.classifier.PredictProba(batch)
	if err != nil {
		return nil, nil, fmt.Errorf("predict_proba: %w", err)
	}
	labels, err := e.classifier.Predict(batch)
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}

	if len(probs) != len(batch) || len(labels) != len(batch) {
		return nil, nil, fmt.Errorf("%w: %d rows in, %d probability rows and %d labels out",
			ErrClassifierOutput, len(batch), len(probs), len(labels))
	}
	for i, row := range probs {
		if len(row) != len(e.classes) {
			return nil, nil, fmt.Errorf("%w: row %d has %d probabilities for %d classes",
				ErrClassifierOutput, i, len(row), len(e.classes))
		}
		for _, p := range row {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return nil, nil, fmt.Errorf("%w: row %d has probability %v", ErrClassifierOutput, i, p)
			}
		}
	}
	return probs, labels, nil
}
