// Package training fits the k-NN artifact served by the recommender from
// feeding logs joined with the formula catalog. It runs offline only.
package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/features"
)

// TargetColumn holds the tolerance label in feeding_logs.csv.
const TargetColumn = "overall_tolerance"

var ErrTrainingData = errors.New("invalid training data")

// FeedingLog is one observed feeding: who was fed, what, and how it went.
type FeedingLog struct {
	Baby      features.BabyProfile
	FormulaID int
	Label     string
}

// Example is a feeding log joined with its catalog product.
type Example struct {
	Baby    features.BabyProfile
	Formula catalog.FormulaProduct
	Label   string
}

func LoadFeedingLogs(path string) ([]FeedingLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrainingData, err)
	}
	defer f.Close()
	return ReadFeedingLogs(f)
}

// ReadFeedingLogs parses a feeding log CSV. Columns are matched by header
// name; extra columns are ignored.
func ReadFeedingLogs(r io.Reader) ([]FeedingLog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrTrainingData, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	required := append(append([]string{}, features.BabyColumns...), "formula_id", TargetColumn)
	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns [%s]", ErrTrainingData, strings.Join(missing, ", "))
	}

	var logs []FeedingLog
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrTrainingData, line, err)
		}
		row := rowReader{rec: rec, idx: idx}
		l := FeedingLog{
			Baby: features.BabyProfile{
				AgeMonth:           row.int("age_month"),
				Sex:                row.str("sex"),
				HeightCm:           row.float("height_cm"),
				WeightKg:           row.float("weight_kg"),
				AllergyRisk:        row.int("allergy_risk"),
				LactoseSensitivity: row.int("lactose_sensitivity"),
				FeedMlPerIntake:    row.int("feed_ml_per_intake"),
			},
			FormulaID: row.int("formula_id"),
			Label:     row.str(TargetColumn),
		}
		if row.err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrTrainingData, line, row.err)
		}
		if l.Label == "" {
			return nil, fmt.Errorf("%w: line %d: empty %s", ErrTrainingData, line, TargetColumn)
		}
		logs = append(logs, l)
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: no feeding logs", ErrTrainingData)
	}
	return logs, nil
}

// rowReader keeps the first parse error so a row can be read field by field.
type rowReader struct {
	rec []string
	idx map[string]int
	err error
}

func (r *rowReader) str(col string) string {
	return strings.TrimSpace(r.rec[r.idx[col]])
}

func (r *rowReader) float(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %v", col, err)
	}
	return v
}

// int accepts "4" as well as "4.0", which spreadsheet exports produce.
func (r *rowReader) int(col string) int {
	v := r.float(col)
	if v != math.Trunc(v) && r.err == nil {
		r.err = fmt.Errorf("column %s: %v is not an integer", col, v)
	}
	return int(v)
}

// Join pairs each log with its catalog product. A log that names a formula
// missing from the catalog is an error.
func Join(logs []FeedingLog, formulas []catalog.FormulaProduct) ([]Example, error) {
	byID := make(map[int]catalog.FormulaProduct, len(formulas))
	for _, f := range formulas {
		byID[f.FormulaID] = f
	}
	out := make([]Example, 0, len(logs))
	for i, l := range logs {
		f, ok := byID[l.FormulaID]
		if !ok {
			return nil, fmt.Errorf("%w: log %d references unknown formula %d", ErrTrainingData, i, l.FormulaID)
		}
		out = append(out, Example{Baby: l.Baby, Formula: f, Label: l.Label})
	}
	return out, nil
}
