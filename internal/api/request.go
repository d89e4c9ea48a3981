package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/SmartBottle/Recommender/internal/features"
)

// profileRequest accepts either a bare profile body or one wrapped as
// {"baby_profile": {...}, ...}. The wrapped form wins when both are present.
type profileRequest struct {
	features.ProfileInput
	Profile     *features.ProfileInput `json:"baby_profile"`
	TopN        *int                   `json:"top_n"`
	MinGoodProb *float64               `json:"min_good_prob"`
	FormulaID   *int                   `json:"formula_id"`
}

// profile validates the submitted profile. Every field is required.
func (p *profileRequest) profile() (features.BabyProfile, error) {
	if p.Profile != nil {
		return p.Profile.Profile()
	}
	return p.ProfileInput.Profile()
}

func decodeProfileRequest(r *http.Request) (*profileRequest, error) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: request body required", errBadRequest)
		}
		return nil, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}

	if err := overrideInt(r, "top_n", &req.TopN); err != nil {
		return nil, err
	}
	if err := overrideInt(r, "formula_id", &req.FormulaID); err != nil {
		return nil, err
	}
	if v := r.URL.Query().Get("min_good_prob"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: min_good_prob must be a number, got %q", errBadRequest, v)
		}
		req.MinGoodProb = &f
	}
	return &req, nil
}

// overrideInt replaces *dst with the query parameter when it is present.
func overrideInt(r *http.Request, name string, dst **int) error {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, v)
	}
	*dst = &n
	return nil
}
