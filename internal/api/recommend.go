package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SmartBottle/Recommender/internal/config"
	"github.com/SmartBottle/Recommender/internal/features"
	"github.com/SmartBottle/Recommender/internal/hermes"
	"github.com/SmartBottle/Recommender/internal/metrics"
	"github.com/SmartBottle/Recommender/internal/scoring"
)

// Scorer is the part of scoring.Engine the HTTP layer depends on.
type Scorer interface {
	Rank(baby features.BabyProfile, topN int, minGoodProb float64) (*scoring.RecommendationResult, error)
	Predict(baby features.BabyProfile, formulaID int) (*scoring.PredictionResult, error)
	ModelVersion() string
}

type RecommendHandler struct {
	scorer   Scorer
	events   *eventPublisher
	defaults config.RecommendConfig
	logger   *slog.Logger
}

func NewRecommendHandler(s Scorer, h hermes.Client, defaults config.RecommendConfig, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{
		scorer:   s,
		events:   &eventPublisher{client: h, logger: logger},
		defaults: defaults,
		logger:   logger,
	}
}

type recommendResponse struct {
	Status          string                    `json:"status"`
	BabyProfile     features.BabyProfile      `json:"baby_profile"`
	Recommendations []scoring.ScoredCandidate `json:"recommendations"`
	AllFormulas     []scoring.ScoredCandidate `json:"all_formulas"`
	ModelVersion    string                    `json:"model_version"`
}

type predictResponse struct {
	Status       string                    `json:"status"`
	BabyProfile  features.BabyProfile      `json:"baby_profile"`
	Prediction   *scoring.PredictionResult `json:"prediction"`
	ModelVersion string                    `json:"model_version"`
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := decodeProfileRequest(r)
	if err != nil {
		h.fail(w, metrics.OpRecommend, start, err)
		return
	}
	baby, err := req.profile()
	if err != nil {
		h.fail(w, metrics.OpRecommend, start, err)
		return
	}

	topN := h.defaults.DefaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}
	minGoodProb := h.defaults.DefaultMinGoodProb
	if req.MinGoodProb != nil {
		minGoodProb = *req.MinGoodProb
	}

	result, err := h.scorer.Rank(baby, topN, minGoodProb)
	if err != nil {
		h.fail(w, metrics.OpRecommend, start, err)
		return
	}
	metrics.ObserveScoring(metrics.OpRecommend, metrics.OutcomeOK, start)

	ids := make([]int, len(result.Recommendations))
	for i, c := range result.Recommendations {
		ids[i] = c.FormulaID
	}
	w.Header().Set("X-Recommendation-ID", h.events.served(metrics.OpRecommend, h.scorer.ModelVersion(), ids))

	h.logger.Info("recommendation served",
		"age_month", baby.AgeMonth,
		"sex", baby.Sex,
		"top_n", topN,
		"min_good_prob", minGoodProb,
		"returned", len(result.Recommendations),
	)

	writeJSON(w, http.StatusOK, recommendResponse{
		Status:          "success",
		BabyProfile:     baby,
		Recommendations: result.Recommendations,
		AllFormulas:     result.AllFormulas,
		ModelVersion:    h.scorer.ModelVersion(),
	})
}

func (h *RecommendHandler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := decodeProfileRequest(r)
	if err != nil {
		h.fail(w, metrics.OpPredict, start, err)
		return
	}
	if req.FormulaID == nil {
		h.fail(w, metrics.OpPredict, start, badRequest("formula_id query parameter required"))
		return
	}
	baby, err := req.profile()
	if err != nil {
		h.fail(w, metrics.OpPredict, start, err)
		return
	}

	prediction, err := h.scorer.Predict(baby, *req.FormulaID)
	if err != nil {
		h.fail(w, metrics.OpPredict, start, err)
		return
	}
	metrics.ObserveScoring(metrics.OpPredict, metrics.OutcomeOK, start)

	w.Header().Set("X-Recommendation-ID",
		h.events.served(metrics.OpPredict, h.scorer.ModelVersion(), []int{prediction.FormulaID}))

	writeJSON(w, http.StatusOK, predictResponse{
		Status:       "success",
		BabyProfile:  baby,
		Prediction:   prediction,
		ModelVersion: h.scorer.ModelVersion(),
	})
}

func (h *RecommendHandler) fail(w http.ResponseWriter, op string, start time.Time, err error) {
	metrics.ObserveScoring(op, outcomeFor(err), start)
	if statusFor(err) >= http.StatusInternalServerError {
		h.logger.Error("scoring failed", "operation", op, "error", err)
	}
	writeError(w, err)
}
