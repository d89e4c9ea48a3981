package training

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/SmartBottle/Recommender/internal/features"
	"github.com/SmartBottle/Recommender/internal/model"
)

type ClassReport struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Support   int     `json:"support"`
}

type Report struct {
	Accuracy float64                `json:"accuracy"`
	Total    int                    `json:"total"`
	Classes  map[string]ClassReport `json:"classes"`
}

// Evaluate predicts every example with clf and scores the labels.
func Evaluate(clf model.Classifier, examples []Example) (*Report, error) {
	enc, err := features.NewEncoder(clf.FeatureColumns())
	if err != nil {
		return nil, err
	}
	batch := make([]features.FeatureVector, len(examples))
	for i, ex := range examples {
		batch[i] = enc.Encode(ex.Baby, ex.Formula)
	}
	predicted, err := clf.Predict(batch)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	tp := make(map[string]int)
	predCount := make(map[string]int)
	support := make(map[string]int)
	correct := 0
	for i, ex := range examples {
		support[ex.Label]++
		predCount[predicted[i]]++
		if predicted[i] == ex.Label {
			tp[ex.Label]++
			correct++
		}
	}

	r := &Report{Total: len(examples), Classes: make(map[string]ClassReport)}
	if len(examples) > 0 {
		r.Accuracy = float64(correct) / float64(len(examples))
	}
	for _, c := range clf.Classes() {
		cr := ClassReport{Support: support[c]}
		if predCount[c] > 0 {
			cr.Precision = float64(tp[c]) / float64(predCount[c])
		}
		if support[c] > 0 {
			cr.Recall = float64(tp[c]) / float64(support[c])
		}
		r.Classes[c] = cr
	}
	return r, nil
}

// Print writes a per-class table followed by overall accuracy.
func (r *Report) Print(w io.Writer) {
	names := make([]string, 0, len(r.Classes))
	for c := range r.Classes {
		names = append(names, c)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "class\tprecision\trecall\tsupport\t")
	for _, c := range names {
		cr := r.Classes[c]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t\n", c, cr.Precision, cr.Recall, cr.Support)
	}
	fmt.Fprintf(tw, "accuracy\t\t%.2f\t%d\t\n", r.Accuracy, r.Total)
	tw.Flush()
}
