package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrFormulaNotFound = errors.New("formula not found")
	ErrCatalogLoad     = errors.New("catalog load failed")
)

type FormulaProduct struct {
	FormulaID    int    `json:"formula_id"`
	Brand        string `json:"formula_brand"`
	Category     string `json:"category"`
	LactoseLevel string `json:"lactose_level"`
	TargetIssue  string `json:"target_issue"`
	ProteinType  string `json:"protein_type"`
}

// Store is the read-only view of the formula catalog used at serving time.
type Store interface {
	// List returns every product ordered by formula_id ascending.
	List() []FormulaProduct
	Get(id int) (FormulaProduct, error)
}

// MemoryStore is an immutable in-memory catalog. It is safe for concurrent use.
type MemoryStore struct {
	formulas []FormulaProduct
	byID     map[int]int
}

// NewMemoryStore copies formulas, orders them by formula_id and rejects
// empty or duplicated catalogs.
func NewMemoryStore(formulas []FormulaProduct) (*MemoryStore, error) {
	if len(formulas) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrCatalogLoad)
	}

	sorted := make([]FormulaProduct, len(formulas))
	copy(sorted, formulas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FormulaID < sorted[j].FormulaID
	})

	byID := make(map[int]int, len(sorted))
	for i, f := range sorted {
		if _, dup := byID[f.FormulaID]; dup {
			return nil, fmt.Errorf("%w: duplicate formula_id %d", ErrCatalogLoad, f.FormulaID)
		}
		byID[f.FormulaID] = i
	}

	return &MemoryStore{formulas: sorted, byID: byID}, nil
}

func (s *MemoryStore) List() []FormulaProduct {
	out := make([]FormulaProduct, len(s.formulas))
	copy(out, s.formulas)
	return out
}

func (s *MemoryStore) Get(id int) (FormulaProduct, error) {
	i, ok := s.byID[id]
	if !ok {
		return FormulaProduct{}, fmt.Errorf("%w: formula_id %d", ErrFormulaNotFound, id)
	}
	return s.formulas[i], nil
}

func (s *MemoryStore) Len() int {
	return len(s.formulas)
}
