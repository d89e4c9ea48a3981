package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/SmartBottle/Recommender/internal/features"
)

type columnTransform struct {
	name       string
	input      int
	kind       features.Kind
	mean       float64
	scale      float64
	offset     int
	categories map[string]int
}

// KNNClassifier is an immutable k-nearest-neighbour pipeline. Numeric columns
// are standardised, categorical columns one-hot encoded (unknown categories
// encode to all zeros) and columns listed in neither are dropped.
type KNNClassifier struct {
	version          string
	columns          []string
	classes          []string
	k                int
	distanceWeighted bool

	transforms []columnTransform
	width      int
	samples    [][]float64
	labels     []int
}

// NewKNN validates the artifact and pre-transforms every training sample.
func NewKNN(a *Artifact) (*KNNClassifier, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	colIndex := make(map[string]int, len(a.FeatureCols))
	for i, c := range a.FeatureCols {
		if _, dup := colIndex[c]; dup {
			return nil, fmt.Errorf("%w: duplicate feature column %q", ErrArtifactLoad, c)
		}
		colIndex[c] = i
	}

	m := &KNNClassifier{
		version:          a.Version,
		columns:          append([]string(nil), a.FeatureCols...),
		classes:          append([]string(nil), a.Classes...),
		k:                a.NNeighbors,
		distanceWeighted: a.Weights == WeightsDistance,
	}

	used := make(map[string]bool)
	for _, name := range a.NumericFeatures {
		idx, ok := colIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: numeric feature %q not in feature_cols", ErrArtifactLoad, name)
		}
		mean, okMean := a.Scaler.Mean[name]
		scale, okScale := a.Scaler.Scale[name]
		if !okMean || !okScale {
			return nil, fmt.Errorf("%w: scaler missing statistics for %q", ErrArtifactLoad, name)
		}
		if scale == 0 {
			scale = 1
		}
		used[name] = true
		m.transforms = append(m.transforms, columnTransform{
			name: name, input: idx, kind: features.Numeric,
			mean: mean, scale: scale, offset: m.width,
		})
		m.width++
	}
	for _, name := range a.CategoricalFeatures {
		idx, ok := colIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: categorical feature %q not in feature_cols", ErrArtifactLoad, name)
		}
		if used[name] {
			return nil, fmt.Errorf("%w: feature %q is both numeric and categorical", ErrArtifactLoad, name)
		}
		cats, ok := a.Categories[name]
		if !ok || len(cats) == 0 {
			return nil, fmt.Errorf("%w: no categories for %q", ErrArtifactLoad, name)
		}
		lookup := make(map[string]int, len(cats))
		for j, c := range cats {
			lookup[c] = j
		}
		m.transforms = append(m.transforms, columnTransform{
			name: name, input: idx, kind: features.Categorical,
			offset: m.width, categories: lookup,
		})
		m.width += len(cats)
	}

	classIndex := make(map[string]int, len(m.classes))
	for i, c := range m.classes {
		classIndex[c] = i
	}

	m.samples = make([][]float64, 0, len(a.Samples))
	m.labels = make([]int, 0, len(a.Samples))
	for i, s := range a.Samples {
		label, ok := classIndex[s.Label]
		if !ok {
			return nil, fmt.Errorf("%w: sample %d has unknown label %q", ErrArtifactLoad, i, s.Label)
		}
		fv, err := m.sampleVector(s)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", ErrArtifactLoad, i, err)
		}
		row, err := m.transform(fv)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", ErrArtifactLoad, i, err)
		}
		m.samples = append(m.samples, row)
		m.labels = append(m.labels, label)
	}
	return m, nil
}

func (m *KNNClassifier) sampleVector(s Sample) (features.FeatureVector, error) {
	fv := make(features.FeatureVector, len(m.columns))
	for i, c := range m.columns {
		fv[i].Name = c
	}
	for _, t := range m.transforms {
		raw, ok := s.Features[t.name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", t.name)
		}
		switch v := raw.(type) {
		case float64:
			fv[t.input].Value = features.Num(v)
		case int:
			fv[t.input].Value = features.Num(float64(v))
		case string:
			if t.kind == features.Numeric {
				return nil, fmt.Errorf("column %q: expected number, got %q", t.name, v)
			}
			fv[t.input].Value = features.Cat(v)
		default:
			return nil, fmt.Errorf("column %q: unsupported value %v", t.name, raw)
		}
	}
	return fv, nil
}

func (m *KNNClassifier) transform(fv features.FeatureVector) ([]float64, error) {
	if len(fv) != len(m.columns) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", features.ErrSchemaMismatch, len(m.columns), len(fv))
	}
	for i, f := range fv {
		if f.Name != m.columns[i] {
			return nil, fmt.Errorf("%w: column %d is %q, model expects %q", features.ErrSchemaMismatch, i, f.Name, m.columns[i])
		}
	}

	row := make([]float64, m.width)
	for _, t := range m.transforms {
		v := fv[t.input].Value
		if t.kind == features.Numeric {
			if v.Kind != features.Numeric {
				return nil, fmt.Errorf("%w: column %q expects a number", features.ErrSchemaMismatch, t.name)
			}
			row[t.offset] = (v.Num - t.mean) / t.scale
			continue
		}
		if j, ok := t.categories[v.String()]; ok {
			row[t.offset+j] = 1
		}
	}
	return row, nil
}

type neighbour struct {
	idx  int
	dist float64
}

func (m *KNNClassifier) vote(row []float64) []float64 {
	ns := make([]neighbour, len(m.samples))
	for j, s := range m.samples {
		ns[j] = neighbour{idx: j, dist: euclidean(row, s)}
	}
	// Stable so equidistant neighbours resolve by training order.
	sort.SliceStable(ns, func(a, b int) bool { return ns[a].dist < ns[b].dist })
	ns = ns[:min(m.k, len(ns))]

	exact := false
	if m.distanceWeighted {
		for _, n := range ns {
			if n.dist == 0 {
				exact = true
				break
			}
		}
	}

	probs := make([]float64, len(m.classes))
	var total float64
	for _, n := range ns {
		w := 1.0
		if m.distanceWeighted {
			switch {
			case exact && n.dist != 0:
				w = 0
			case !exact:
				w = 1 / n.dist
			}
		}
		probs[m.labels[n.idx]] += w
		total += w
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (m *KNNClassifier) PredictProba(batch []features.FeatureVector) ([][]float64, error) {
	out := make([][]float64, len(batch))
	for i, fv := range batch {
		row, err := m.transform(fv)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = m.vote(row)
	}
	return out, nil
}

// Predict returns the highest-probability label per row; ties go to the
// class listed first.
func (m *KNNClassifier) Predict(batch []features.FeatureVector) ([]string, error) {
	probs, err := m.PredictProba(batch)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(probs))
	for i, p := range probs {
		best := 0
		for j := 1; j < len(p); j++ {
			if p[j] > p[best] {
				best = j
			}
		}
		out[i] = m.classes[best]
	}
	return out, nil
}

func (m *KNNClassifier) FeatureColumns() []string {
	return append([]string(nil), m.columns...)
}

func (m *KNNClassifier) Classes() []string {
	return append([]string(nil), m.classes...)
}

func (m *KNNClassifier) Version() string { return m.version }

func (m *KNNClassifier) NumSamples() int { return len(m.samples) }
