package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SmartBottle/Recommender/internal/catalog"
)

var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Column names as they appear in the training data.
var (
	BabyColumns = []string{
		"age_month",
		"sex",
		"height_cm",
		"weight_kg",
		"allergy_risk",
		"lactose_sensitivity",
		"feed_ml_per_intake",
	}
	FormulaColumns = []string{
		"formula_id",
		"category",
		"lactose_level",
		"target_issue",
		"protein_type",
	}
)

// DefaultColumns is the baby-then-formula order used when fitting a new model.
func DefaultColumns() []string {
	out := make([]string, 0, len(BabyColumns)+len(FormulaColumns))
	out = append(out, BabyColumns...)
	return append(out, FormulaColumns...)
}

type resolver func(b BabyProfile, f catalog.FormulaProduct) Value

var resolvers = map[string]resolver{
	"age_month":           func(b BabyProfile, _ catalog.FormulaProduct) Value { return Num(float64(b.AgeMonth)) },
	"sex":                 func(b BabyProfile, _ catalog.FormulaProduct) Value { return Cat(b.Sex) },
	"height_cm":           func(b BabyProfile, _ catalog.FormulaProduct) Value { return Num(b.HeightCm) },
	"weight_kg":           func(b BabyProfile, _ catalog.FormulaProduct) Value { return Num(b.WeightKg) },
	"allergy_risk":        func(b BabyProfile, _ catalog.FormulaProduct) Value { return Num(float64(b.AllergyRisk)) },
	"lactose_sensitivity": func(b BabyProfile, _ catalog.FormulaProduct) Value { return Num(float64(b.LactoseSensitivity)) },
	"feed_ml_per_intake":  func(b BabyProfile, _ catalog.FormulaProduct) Value { return Num(float64(b.FeedMlPerIntake)) },
	"formula_id":          func(_ BabyProfile, f catalog.FormulaProduct) Value { return Num(float64(f.FormulaID)) },
	"category":            func(_ BabyProfile, f catalog.FormulaProduct) Value { return Cat(f.Category) },
	"lactose_level":       func(_ BabyProfile, f catalog.FormulaProduct) Value { return Cat(f.LactoseLevel) },
	"target_issue":        func(_ BabyProfile, f catalog.FormulaProduct) Value { return Cat(f.TargetIssue) },
	"protein_type":        func(_ BabyProfile, f catalog.FormulaProduct) Value { return Cat(f.ProteinType) },
}

// KnownColumns lists every column the encoder can resolve, sorted.
func KnownColumns() []string {
	out := make([]string, 0, len(resolvers))
	for name := range resolvers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Encoder turns baby×formula pairs into rows matching a model's column order.
// It holds no mutable state and is safe for concurrent use.
type Encoder struct {
	columns  []string
	resolved []resolver
}

// NewEncoder binds the model's declared columns to profile and formula fields.
func NewEncoder(columns []string) (*Encoder, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: model declares no feature columns", ErrSchemaMismatch)
	}

	seen := make(map[string]bool, len(columns))
	var unknown, dup []string
	resolved := make([]resolver, len(columns))
	for i, c := range columns {
		if seen[c] {
			dup = append(dup, c)
		}
		seen[c] = true
		r, ok := resolvers[c]
		if !ok {
			unknown = append(unknown, c)
			continue
		}
		resolved[i] = r
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unresolvable columns [%s]", ErrSchemaMismatch, strings.Join(unknown, ", "))
	}
	if len(dup) > 0 {
		return nil, fmt.Errorf("%w: duplicated columns [%s]", ErrSchemaMismatch, strings.Join(dup, ", "))
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Encoder{columns: cols, resolved: resolved}, nil
}

func (e *Encoder) Columns() []string {
	out := make([]string, len(e.columns))
	copy(out, e.columns)
	return out
}

func (e *Encoder) Encode(b BabyProfile, f catalog.FormulaProduct) FeatureVector {
	fv := make(FeatureVector, len(e.columns))
	for i, name := range e.columns {
		fv[i] = Feature{Name: name, Value: e.resolved[i](b, f)}
	}
	return fv
}

// EncodeBatch encodes one row per formula, preserving input order.
func (e *Encoder) EncodeBatch(b BabyProfile, formulas []catalog.FormulaProduct) []FeatureVector {
	batch := make([]FeatureVector, len(formulas))
	for i, f := range formulas {
		batch[i] = e.Encode(b, f)
	}
	return batch
}
