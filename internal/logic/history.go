package logic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fixturecast/predictor-api/internal/models"
)

// History listing bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// HistoryRepository persists served predictions in prediction_history.
type HistoryRepository struct {
	pg PgPool
}

func NewHistoryRepository(pg PgPool) *HistoryRepository {
	return &HistoryRepository{pg: pg}
}

// Record stores res for matchID and returns the new row id.
func (r *HistoryRepository) Record(ctx context.Context, matchID int64, res *models.PredictionResult) (string, error) {
	id := uuid.NewString()
	_, err := r.pg.Exec(ctx, `
		INSERT INTO prediction_history (
			id, match_id, predicted_at, team_a_name, team_b_name,
			predicted_goals_a, predicted_goals_b, predicted_outcome, predicted_winner,
			confidence_score, model_version, insights
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		id, matchID, res.GeneratedAt, res.NameA, res.NameB,
		res.GoalsA, res.GoalsB, res.PredictedLabel, res.PredictedWinner,
		res.Confidence, res.ModelVersion, pq.Array(res.Insights),
	)
	if err != nil {
		return "", fmt.Errorf("insert prediction history: %w", err)
	}
	return id, nil
}

// List returns the most recent predictions joined with the actual score
// when the match has finished.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]models.PredictionHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := r.pg.Query(ctx, `
		SELECT
			ph.id::text, ph.match_id, ph.predicted_at, ph.team_a_name, ph.team_b_name,
			ph.predicted_goals_a, ph.predicted_goals_b, ph.predicted_outcome, ph.predicted_winner,
			ph.confidence_score, ph.model_version, ph.insights,
			m.home_score, m.away_score
		FROM prediction_history ph
		LEFT JOIN matches m ON m.id = ph.match_id AND m.status = 'FINISHED'
		ORDER BY ph.predicted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, classifySourceErr("list prediction history", err)
	}
	defer rows.Close()

	var out []models.PredictionHistory
	for rows.Next() {
		var h models.PredictionHistory
		if err := rows.Scan(
			&h.ID, &h.MatchID, &h.PredictedAt, &h.TeamAName, &h.TeamBName,
			&h.PredictedGoalsA, &h.PredictedGoalsB, &h.PredictedOutcome, &h.PredictedWinner,
			&h.ConfidenceScore, &h.ModelVersion, &h.Insights,
			&h.ActualGoalsA, &h.ActualGoalsB,
		); err != nil {
			return nil, fmt.Errorf("scan prediction history: %w", err)
		}
		h.PredictionCorrect = predictionCorrect(h)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySourceErr("list prediction history", err)
	}
	return out, nil
}

// predictionCorrect compares the predicted winner with the final score.
func predictionCorrect(h models.PredictionHistory) *bool {
	if h.ActualGoalsA == nil || h.ActualGoalsB == nil {
		return nil
	}
	actual := "Draw"
	switch {
	case *h.ActualGoalsA > *h.ActualGoalsB:
		actual = h.TeamAName
	case *h.ActualGoalsA < *h.ActualGoalsB:
		actual = h.TeamBName
	}
	ok := actual == h.PredictedWinner
	return &ok
}
