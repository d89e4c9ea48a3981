package api

import (
	"net/http"

	"github.com/SmartBottle/Recommender/internal/catalog"
)

const (
	ServiceName    = "Smart Bottle Formula Recommender"
	ServiceVersion = "1.0.0"
)

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": ServiceName,
		"version": ServiceVersion,
		"status":  "healthy",
		"api":     "/api/v1",
	})
}

// healthHandler reports the loaded model and catalog. Both are loaded before
// the server starts, so a responding process is always healthy.
func healthHandler(s Scorer, c catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"model":    s.ModelVersion(),
			"formulas": len(c.List()),
		})
	}
}
