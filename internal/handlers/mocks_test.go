package handlers

import (
	"context"
	"sync"

	"github.com/fixturecast/predictor-api/internal/models"
	"github.com/fixturecast/predictor-api/internal/oracle"
)

// MockPredictionService
type MockPredictionService struct {
	PredictFunc func(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
	Loaded      bool
	Version     string
}

func (m *MockPredictionService) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, req)
	}
	return &models.PredictionResult{
		RequestID:       "req-1",
		NameA:           "Team A",
		NameB:           "Team B",
		GoalsA:          1.8472,
		GoalsB:          0.9618,
		Probabilities:   models.Probabilities{A: 0.5567, Draw: 0.2, B: 0.2433},
		Outcome:         models.OutcomeA,
		PredictedLabel:  "Team A Win",
		PredictedWinner: "Team A",
		Confidence:      0.6328,
		ModelVersion:    "ridge-test",
		Insights:        []string{"Team A creates more scoring chances (2.0 vs 1.2 xG/game)"},
		KeyFeatures:     map[string]float64{"quality_difference": 20.004},
	}, nil
}

func (m *MockPredictionService) ModelStatus() (bool, string) {
	return m.Loaded, m.Version
}

// MockHistoryStore
type MockHistoryStore struct {
	ListFunc func(ctx context.Context, limit int) ([]models.PredictionHistory, error)

	mu       sync.Mutex
	Recorded []int64
	Limits   []int
}

func (m *MockHistoryStore) Record(ctx context.Context, matchID int64, res *models.PredictionResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, matchID)
	return "hist-1", nil
}

func (m *MockHistoryStore) List(ctx context.Context, limit int) ([]models.PredictionHistory, error) {
	m.mu.Lock()
	m.Limits = append(m.Limits, limit)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return nil, nil
}

// MockReloader
type MockReloader struct {
	Snapshot *oracle.Snapshot
	Err      error
	Paths    []string
}

func (m *MockReloader) Reload(path string) (*oracle.Snapshot, error) {
	m.Paths = append(m.Paths, path)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Snapshot, nil
}
