package catalog

import (
	"errors"
	"testing"
)

func TestNewMemoryStoreOrdersByID(t *testing.T) {
	s, err := NewMemoryStore([]FormulaProduct{
		{FormulaID: 3, Brand: "C"},
		{FormulaID: 1, Brand: "A"},
		{FormulaID: 2, Brand: "B"},
	})
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	got := s.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 formulas, got %d", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		if got[i].FormulaID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, got[i].FormulaID)
		}
	}
	if s.Len() != 3 {
		t.Errorf("expected Len 3, got %d", s.Len())
	}
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	s, _ := NewMemoryStore([]FormulaProduct{{FormulaID: 1, Brand: "A"}})
	list := s.List()
	list[0].Brand = "mutated"
	if s.List()[0].Brand != "A" {
		t.Error("List must not expose internal state")
	}
}

func TestNewMemoryStoreRejectsDuplicates(t *testing.T) {
	_, err := NewMemoryStore([]FormulaProduct{{FormulaID: 1}, {FormulaID: 1}})
	if !errors.Is(err, ErrCatalogLoad) {
		t.Fatalf("expected ErrCatalogLoad, got %v", err)
	}
}

func TestNewMemoryStoreRejectsEmpty(t *testing.T) {
	_, err := NewMemoryStore(nil)
	if !errors.Is(err, ErrCatalogLoad) {
		t.Fatalf("expected ErrCatalogLoad, got %v", err)
	}
}

func TestMemoryStoreGet(t *testing.T) {
	s, _ := NewMemoryStore([]FormulaProduct{{FormulaID: 4, Brand: "GutCare_Constipation"}, {FormulaID: 40, Brand: "Other"}})

	t.Run("exact match", func(t *testing.T) {
		f, err := s.Get(4)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if f.Brand != "GutCare_Constipation" {
			t.Errorf("unexpected brand %q", f.Brand)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Get(41)
		if !errors.Is(err, ErrFormulaNotFound) {
			t.Fatalf("expected ErrFormulaNotFound, got %v", err)
		}
	})
}
