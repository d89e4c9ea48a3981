package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SmartBottle/Recommender/internal/catalog"
)

type FormulasHandler struct {
	catalog catalog.Store
}

func NewFormulasHandler(c catalog.Store) *FormulasHandler {
	return &FormulasHandler{catalog: c}
}

func (h *FormulasHandler) List(w http.ResponseWriter, r *http.Request) {
	formulas := h.catalog.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"count":    len(formulas),
		"formulas": formulas,
	})
}

func (h *FormulasHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, badRequest("formula id must be an integer"))
		return
	}
	formula, err := h.catalog.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"formula": formula,
	})
}
