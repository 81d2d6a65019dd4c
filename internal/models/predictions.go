package models

import "time"

// Outcome is the resolved direction of a prediction.
type Outcome string

const (
	OutcomeA    Outcome = "A"
	OutcomeB    Outcome = "B"
	OutcomeDraw Outcome = "Draw"
)

// Probabilities for A win, draw, B win.
type Probabilities struct {
	A    float64 `json:"prob_a"`
	Draw float64 `json:"prob_draw"`
	B    float64 `json:"prob_b"`
}

// Sum of the three probabilities.
func (p Probabilities) Sum() float64 {
	return p.A + p.Draw + p.B
}

// PredictionRequest is the input to every Predictor.
type PredictionRequest struct {
	CompetitorAID   int64     `json:"competitor_a_id" validate:"required,gt=0"`
	CompetitorBID   int64     `json:"competitor_b_id" validate:"required,gt=0,nefield=CompetitorAID"`
	AsOfDate        string    `json:"as_of_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Matchday        int       `json:"matchday,omitempty" validate:"gte=0"`
	CompetitorAName string    `json:"competitor_a_name,omitempty" validate:"max=120"`
	CompetitorBName string    `json:"competitor_b_name,omitempty" validate:"max=120"`
	MatchID         int64     `json:"match_id,omitempty" validate:"gte=0"`
	AsOf            time.Time `json:"-"`
}

// PredictionResult is built fresh per request and never mutated afterwards.
// Probabilities are unrounded; rounding happens in PredictionResponse.
type PredictionResult struct {
	RequestID       string             `json:"request_id"`
	NameA           string             `json:"name_a"`
	NameB           string             `json:"name_b"`
	GoalsA          float64            `json:"goals_a"`
	GoalsB          float64            `json:"goals_b"`
	Probabilities   Probabilities      `json:"probabilities"`
	Outcome         Outcome            `json:"outcome"`
	PredictedLabel  string             `json:"predicted_outcome"`
	PredictedWinner string             `json:"predicted_winner"`
	Confidence      float64            `json:"confidence_score"`
	ModelVersion    string             `json:"model_version"`
	Insights        []string           `json:"insights"`
	KeyFeatures     map[string]float64 `json:"key_features"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// PredictionResponse is the wire shape of a prediction.
type PredictionResponse struct {
	RequestID        string             `json:"request_id"`
	PredictedOutcome string             `json:"predicted_outcome"`
	PredictedWinner  string             `json:"predicted_winner"`
	GoalsA           float64            `json:"goals_a"`
	GoalsB           float64            `json:"goals_b"`
	ConfidenceScore  float64            `json:"confidence_score"`
	ProbA            float64            `json:"prob_a"`
	ProbDraw         float64            `json:"prob_draw"`
	ProbB            float64            `json:"prob_b"`
	ModelVersion     string             `json:"model_version"`
	Insights         []string           `json:"insights"`
	KeyFeatures      map[string]float64 `json:"key_features"`
}

// PredictionHistory is a persisted prediction, optionally joined with the actual score.
type PredictionHistory struct {
	ID                string    `json:"id"`
	MatchID           int64     `json:"match_id"`
	PredictedAt       time.Time `json:"predicted_at"`
	TeamAName         string    `json:"team_a_name"`
	TeamBName         string    `json:"team_b_name"`
	PredictedGoalsA   float64   `json:"predicted_goals_a"`
	PredictedGoalsB   float64   `json:"predicted_goals_b"`
	PredictedOutcome  string    `json:"predicted_outcome"`
	PredictedWinner   string    `json:"predicted_winner"`
	ConfidenceScore   float64   `json:"confidence_score"`
	ModelVersion      string    `json:"model_version"`
	Insights          []string  `json:"insights"`
	ActualGoalsA      *int      `json:"actual_goals_a"`
	ActualGoalsB      *int      `json:"actual_goals_b"`
	PredictionCorrect *bool     `json:"prediction_correct"`
}
