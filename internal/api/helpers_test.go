package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SmartBottle/Recommender/internal/catalog"
	"github.com/SmartBottle/Recommender/internal/config"
	"github.com/SmartBottle/Recommender/internal/features"
	"github.com/SmartBottle/Recommender/internal/hermes"
	"github.com/SmartBottle/Recommender/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubClassifier returns a fixed good probability per formula_id.
type stubClassifier struct {
	good map[int]float64
}

func (s *stubClassifier) FeatureColumns() []string { return features.DefaultColumns() }
func (s *stubClassifier) Classes() []string        { return []string{"diarrhea", "good"} }

func (s *stubClassifier) PredictProba(batch []features.FeatureVector) ([][]float64, error) {
	out := make([][]float64, len(batch))
	for i, fv := range batch {
		v, _ := fv.Get("formula_id")
		g := s.good[int(v.Num)]
		out[i] = []float64{1 - g, g}
	}
	return out, nil
}

func (s *stubClassifier) Predict(batch []features.FeatureVector) ([]string, error) {
	probs, err := s.PredictProba(batch)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(probs))
	for i, p := range probs {
		out[i] = "diarrhea"
		if p[1] > p[0] {
			out[i] = "good"
		}
	}
	return out, nil
}

type mockHermes struct {
	mock.Mock
}

func (m *mockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockHermes) Close() {}

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Rank(baby features.BabyProfile, topN int, minGoodProb float64) (*scoring.RecommendationResult, error) {
	args := m.Called(baby, topN, minGoodProb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.RecommendationResult), args.Error(1)
}

func (m *mockScorer) Predict(baby features.BabyProfile, formulaID int) (*scoring.PredictionResult, error) {
	args := m.Called(baby, formulaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.PredictionResult), args.Error(1)
}

func (m *mockScorer) ModelVersion() string { return "mock" }

func testCatalog(t *testing.T) *catalog.MemoryStore {
	t.Helper()
	s, err := catalog.NewMemoryStore([]catalog.FormulaProduct{
		{FormulaID: 1, Brand: "MilkySoft_Normal", Category: "normal", LactoseLevel: "normal", TargetIssue: "none", ProteinType: "standard"},
		{FormulaID: 2, Brand: "LactoFree_Sensitive", Category: "lactose_free", LactoseLevel: "free", TargetIssue: "lactose", ProteinType: "standard"},
		{FormulaID: 3, Brand: "GutCare_Constipation", Category: "constipation_care", LactoseLevel: "normal", TargetIssue: "constipation", ProteinType: "standard"},
	})
	require.NoError(t, err)
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
		},
		Recommend: config.RecommendConfig{
			DefaultTopN:        3,
			DefaultMinGoodProb: 0.3,
		},
	}
}

func testEngine(t *testing.T, c catalog.Store) *scoring.Engine {
	t.Helper()
	clf := &stubClassifier{good: map[int]float64{1: 0.2, 2: 0.9, 3: 0.5}}
	e, err := scoring.NewEngine(c, clf, "knn_v1_test", discardLogger())
	require.NoError(t, err)
	return e
}

// newTestRouter wires the real engine over the stub classifier. h may be nil.
func newTestRouter(t *testing.T, h *mockHermes) http.Handler {
	t.Helper()
	c := testCatalog(t)
	var client hermes.Client
	if h != nil {
		client = h
	}
	return NewRouter(testEngine(t, c), c, client, testConfig(), discardLogger())
}

func validProfileJSON() map[string]interface{} {
	return map[string]interface{}{
		"age_month":           4,
		"sex":                 "M",
		"height_cm":           62.0,
		"weight_kg":           6.5,
		"allergy_risk":        0,
		"lactose_sensitivity": 1,
		"feed_ml_per_intake":  90,
	}
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
