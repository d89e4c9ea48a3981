package scoring

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/features"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClassifier returns a fixed good probability per formula_id and spreads
// the remainder evenly over the other classes.
type fakeClassifier struct {
	columns []string
	classes []string
	good    map[int]float64

	probaCalls atomic.Int64
	lastBatch  atomic.Int64

	probaErr  error
	shortRows bool
	wideRows  bool
}

func newFakeClassifier(good map[int]float64) *fakeClassifier {
	return &fakeClassifier{
		columns: features.DefaultColumns(),
		classes: []string{"constipation", "diarrhea", "good"},
		good:    good,
	}
}

func (f *fakeClassifier) FeatureColumns() []string { return f.columns }
func (f *fakeClassifier) Classes() []string        { return f.classes }

func (f *fakeClassifier) PredictProba(batch []features.FeatureVector) ([][]float64, error) {
	f.probaCalls.Add(1)
	f.lastBatch.Store(int64(len(batch)))
	if f.probaErr != nil {
		return nil, f.probaErr
	}
	goodIdx := classIndex(f.classes, GoodClass)
	out := make([][]float64, 0, len(batch))
	for _, fv := range batch {
		v, ok := fv.Get("formula_id")
		if !ok {
			return nil, errors.New("formula_id missing")
		}
		g := f.good[int(v.Num)]
		row := make([]float64, len(f.classes))
		for i := range row {
			if i == goodIdx {
				row[i] = g
			} else {
				row[i] = (1 - g) / float64(len(f.classes)-1)
			}
		}
		if f.wideRows {
			row = append(row, 0)
		}
		out = append(out, row)
	}
	if f.shortRows && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeClassifier) Predict(batch []features.FeatureVector) ([]string, error) {
	probs, err := f.PredictProba(batch)
	f.probaCalls.Add(-1)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(probs))
	for i, row := range probs {
		best := 0
		for j := range row {
			if j < len(f.classes) && row[j] > row[best] {
				best = j
			}
		}
		out[i] = f.classes[best]
	}
	return out, nil
}

func mustStore(formulas ...catalog.FormulaProduct) *catalog.MemoryStore {
	s, err := catalog.NewMemoryStore(formulas)
	if err != nil {
		panic(err)
	}
	return s
}

func testBaby() features.BabyProfile {
	return features.BabyProfile{
		AgeMonth:           4,
		Sex:                "M",
		HeightCm:           62.0,
		WeightKg:           6.5,
		AllergyRisk:        0,
		LactoseSensitivity: 1,
		FeedMlPerIntake:    90,
	}
}
