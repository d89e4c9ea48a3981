package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var csvColumns = []string{
	"formula_id", "formula_brand", "category",
	"lactose_level", "target_issue", "protein_type",
}

// LoadCSV reads a formula_master.csv snapshot.
func LoadCSV(path string) ([]FormulaProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCatalogLoad, path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses formula rows by header name. Extra columns are ignored.
func ReadCSV(r io.Reader) ([]FormulaProduct, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCatalogLoad, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range csvColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrCatalogLoad, strings.Join(missing, ", "))
	}

	var out []FormulaProduct
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCatalogLoad, line, err)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idx["formula_id"]]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid formula_id %q", ErrCatalogLoad, line, rec[idx["formula_id"]])
		}
		out = append(out, FormulaProduct{
			FormulaID:    id,
			Brand:        rec[idx["formula_brand"]],
			Category:     rec[idx["category"]],
			LactoseLevel: rec[idx["lactose_level"]],
			TargetIssue:  rec[idx["target_issue"]],
			ProteinType:  rec[idx["protein_type"]],
		})
	}
	return out, nil
}
