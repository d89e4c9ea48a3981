package training

import (
	"fmt"
	"math"
	"sort"

	"github.com/SmartBottle/Recommender/internal/features"
	"github.com/SmartBottle/Recommender/internal/model"
)

// Options mirror the served pipeline: scaled numeric columns, one-hot
// categorical columns and a distance-weighted k-NN vote.
type Options struct {
	Version             string
	NumericFeatures     []string
	CategoricalFeatures []string
	NNeighbors          int
	Weights             string
}

func DefaultOptions() Options {
	return Options{
		NumericFeatures: []string{
			"age_month", "height_cm", "weight_kg",
			"allergy_risk", "lactose_sensitivity", "feed_ml_per_intake",
		},
		CategoricalFeatures: []string{
			"sex", "formula_id", "category",
			"lactose_level", "target_issue", "protein_type",
		},
		NNeighbors: 5,
		Weights:    model.WeightsDistance,
	}
}

// Fit computes scaler statistics, category vocabularies and the class list
// from examples and stores every example as a neighbour sample.
func Fit(examples []Example, opts Options) (*model.Artifact, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no examples to fit", ErrTrainingData)
	}
	enc, err := features.NewEncoder(features.DefaultColumns())
	if err != nil {
		return nil, err
	}

	rows := make([]features.FeatureVector, len(examples))
	classSet := make(map[string]bool)
	for i, ex := range examples {
		rows[i] = enc.Encode(ex.Baby, ex.Formula)
		classSet[ex.Label] = true
	}

	a := &model.Artifact{
		Version:             opts.Version,
		FeatureCols:         enc.Columns(),
		NumericFeatures:     append([]string(nil), opts.NumericFeatures...),
		CategoricalFeatures: append([]string(nil), opts.CategoricalFeatures...),
		TargetCol:           TargetColumn,
		Classes:             sortedKeys(classSet),
		Scaler: model.Scaler{
			Mean:  make(map[string]float64, len(opts.NumericFeatures)),
			Scale: make(map[string]float64, len(opts.NumericFeatures)),
		},
		Categories: make(map[string][]string, len(opts.CategoricalFeatures)),
		NNeighbors: opts.NNeighbors,
		Weights:    opts.Weights,
	}

	for _, col := range opts.NumericFeatures {
		mean, std := meanStd(rows, col)
		if std == 0 {
			std = 1
		}
		a.Scaler.Mean[col] = mean
		a.Scaler.Scale[col] = std
	}
	for _, col := range opts.CategoricalFeatures {
		seen := make(map[string]bool)
		for _, fv := range rows {
			v, _ := fv.Get(col)
			seen[v.String()] = true
		}
		a.Categories[col] = sortedKeys(seen)
	}

	a.Samples = make([]model.Sample, len(rows))
	for i, fv := range rows {
		s := model.Sample{Features: make(map[string]interface{}), Label: examples[i].Label}
		for _, col := range opts.NumericFeatures {
			v, _ := fv.Get(col)
			s.Features[col] = v.Num
		}
		for _, col := range opts.CategoricalFeatures {
			v, _ := fv.Get(col)
			s.Features[col] = v.String()
		}
		a.Samples[i] = s
	}

	// Build once so an inconsistent option set fails here, not at serve time.
	if _, err := model.NewKNN(a); err != nil {
		return nil, err
	}
	return a, nil
}

// meanStd returns the mean and population standard deviation of col.
func meanStd(rows []features.FeatureVector, col string) (float64, float64) {
	var sum float64
	for _, fv := range rows {
		v, _ := fv.Get(col)
		sum += v.Num
	}
	mean := sum / float64(len(rows))

	var sq float64
	for _, fv := range rows {
		v, _ := fv.Get(col)
		d := v.Num - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(rows)))
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
