package hermes

import "time"

// RecommendationServedEvent is emitted after a successful rank or predict
// call. It carries no baby profile data.
type RecommendationServedEvent struct {
	RecommendationID string    `json:"recommendation_id"`
	Operation        string    `json:"operation"`
	ModelVersion     string    `json:"model_version"`
	FormulaIDs       []int     `json:"formula_ids"`
	Timestamp        time.Time `json:"timestamp"`
}
