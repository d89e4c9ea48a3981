package features

import "strconv"

type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Value is one typed cell of a feature row. Numeric values keep a canonical
// string form so a numeric column (formula_id) can still be one-hot encoded.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

func Num(v float64) Value {
	return Value{Kind: Numeric, Num: v, Str: strconv.FormatFloat(v, 'f', -1, 64)}
}

func Cat(s string) Value {
	return Value{Kind: Categorical, Str: s}
}

func (v Value) String() string {
	return v.Str
}

type Feature struct {
	Name  string
	Value Value
}

// FeatureVector is one encoded candidate, ordered exactly as the model's
// feature columns.
type FeatureVector []Feature

func (fv FeatureVector) Names() []string {
	out := make([]string, len(fv))
	for i, f := range fv {
		out[i] = f.Name
	}
	return out
}

func (fv FeatureVector) Get(name string) (Value, bool) {
	for _, f := range fv {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}
