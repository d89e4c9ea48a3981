package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/features"
	"github.com/SmartBottle/Recommender/internal/metrics"
	"github.com/SmartBottle/Recommender/internal/scoring"
)

// errBadRequest marks malformed bodies and query parameters.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrFormulaNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, features.ErrInvalidProfile),
		errors.Is(err, scoring.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func outcomeFor(err error) string {
	switch statusFor(err) {
	case http.StatusNotFound:
		return metrics.OutcomeNotFound
	case http.StatusBadRequest:
		return metrics.OutcomeBadRequest
	default:
		return metrics.OutcomeServerError
	}
}

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}
