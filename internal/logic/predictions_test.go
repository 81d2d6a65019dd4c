package logic

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fixturecast/predictor-api/internal/models"
	"github.com/fixturecast/predictor-api/internal/oracle"
)

// testSnapshot scores goals = 0.02*quality + 0.5*xG - 0.6 on raw features.
func testSnapshot(t *testing.T) *oracle.Snapshot {
	t.Helper()
	a := &oracle.Artifact{
		Version:      "ridge-test",
		FeatureNames: models.FeatureNames[:],
		Scaler: oracle.Scaler{
			Mean: make([]float64, models.FeatureCount),
			Std:  make([]float64, models.FeatureCount),
		},
		Weights:   make([]float64, models.FeatureCount),
		Intercept: -0.6,
	}
	for j := range a.Scaler.Std {
		a.Scaler.Std[j] = 1
	}
	a.Weights[0] = 0.02
	a.Weights[2] = 0.5

	snap, err := oracle.NewSnapshot(a)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

func TestLearnedPredictorEndToEnd(t *testing.T) {
	deriver := &fakeDeriver{vectors: map[int64]models.FeatureVector{
		1: {TeamQualityRating: 70, OpponentQualityRating: 50, QualityDifference: 20, TeamXGPerGame: 2.0},
		2: {TeamQualityRating: 50, OpponentQualityRating: 70, QualityDifference: -20, TeamXGPerGame: 1.2},
	}}
	p := NewLearnedPredictor(deriver, &fakeModel{snap: testSnapshot(t)}, NewOutcomeResolver(nil))

	res, err := p.Predict(context.Background(), models.PredictionRequest{
		CompetitorAID: 1, CompetitorBID: 2, CompetitorAName: "X", CompetitorBName: "Y", AsOf: testAsOf,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if res.PredictedLabel != "X Win" {
		t.Errorf("PredictedLabel = %q, want X Win", res.PredictedLabel)
	}
	if res.Confidence <= 0.5 {
		t.Errorf("Confidence = %v, want > 0.5", res.Confidence)
	}
	if !approx(res.GoalsA, 1.8) || !approx(res.GoalsB, 1.0) {
		t.Errorf("goals = %v-%v, want 1.8-1.0", res.GoalsA, res.GoalsB)
	}
	if res.ModelVersion != "ridge-test" {
		t.Errorf("ModelVersion = %q", res.ModelVersion)
	}
	if !deriver.venue[1] || deriver.venue[2] {
		t.Errorf("venue flags = %v, want A at venue only", deriver.venue)
	}
}

func TestLearnedPredictorClampsNegativeGoals(t *testing.T) {
	deriver := &fakeDeriver{vectors: map[int64]models.FeatureVector{
		1: {TeamQualityRating: 10},
		2: {TeamQualityRating: 60, TeamXGPerGame: 1.5},
	}}
	p := NewLearnedPredictor(deriver, &fakeModel{snap: testSnapshot(t)}, NewOutcomeResolver(nil))

	res, err := p.Predict(context.Background(), models.PredictionRequest{CompetitorAID: 1, CompetitorBID: 2, AsOf: testAsOf})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if res.GoalsA != 0 {
		t.Errorf("GoalsA = %v, want clamped 0", res.GoalsA)
	}
	if res.Outcome != models.OutcomeB {
		t.Errorf("Outcome = %s, want B", res.Outcome)
	}
}

func TestLearnedPredictorWithoutModel(t *testing.T) {
	p := NewLearnedPredictor(&fakeDeriver{}, &fakeModel{}, NewOutcomeResolver(nil))
	_, err := p.Predict(context.Background(), models.PredictionRequest{CompetitorAID: 1, CompetitorBID: 2})
	if !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("err = %v, want ErrModelNotLoaded", err)
	}
}

// history gives team 1 six finished matches and team 2 five.
func gateStats() *fakeStats {
	stats := &fakeStats{matches: map[int64][]models.TeamMatch{}}
	for i := 1; i <= 6; i++ {
		stats.matches[1] = append(stats.matches[1], played(i*7, 9, 1, 0))
	}
	for i := 1; i <= 5; i++ {
		stats.matches[2] = append(stats.matches[2], played(i*7, 9, 0, 0))
	}
	return stats
}

type serviceFixture struct {
	learned    *fakePredictor
	rating     *fakePredictor
	noArtifact *fakePredictor
	model      *fakeModel
	cache      *memoryCache
	stats      *fakeStats
	svc        PredictionService
}

func newServiceFixture(t *testing.T, loaded bool) *serviceFixture {
	f := &serviceFixture{
		learned:    &fakePredictor{version: "ridge-test"},
		rating:     &fakePredictor{version: RatingModelVersion},
		noArtifact: &fakePredictor{version: NoArtifactModelVersion},
		model:      &fakeModel{},
		cache:      &memoryCache{},
		stats:      gateStats(),
	}
	if loaded {
		f.model.snap = testSnapshot(t)
	}
	f.svc = NewPredictionService(ServiceConfig{
		Gate:       NewSufficiencyGate(f.stats, DefaultMinHistoryMatches, nil),
		Learned:    f.learned,
		Rating:     f.rating,
		NoArtifact: f.noArtifact,
		Model:      f.model,
		Cache:      f.cache,
	})
	return f
}

func TestPredictionServiceRouting(t *testing.T) {
	tests := []struct {
		name   string
		loaded bool
		a, b    int64
		version string
	}{
		{"no artifact", false, 1, 2, NoArtifactModelVersion},
		{"one side has history", true, 1, 2, "ridge-test"},
		{"neither side has history", true, 2, 3, RatingModelVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, tt.loaded)
			res, err := f.svc.Predict(context.Background(), models.PredictionRequest{
				CompetitorAID: tt.a, CompetitorBID: tt.b, AsOfDate: "2024-06-01",
			})
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			if res.ModelVersion != tt.version {
				t.Errorf("ModelVersion = %q, want %q", res.ModelVersion, tt.version)
			}
			if res.RequestID == "" {
				t.Error("RequestID not set")
			}
		})
	}
}

func TestPredictionServiceModelStatus(t *testing.T) {
	loaded, version := newServiceFixture(t, false).svc.ModelStatus()
	if loaded || version != NoArtifactModelVersion {
		t.Errorf("ModelStatus() = %v, %q", loaded, version)
	}
	loaded, version = newServiceFixture(t, true).svc.ModelStatus()
	if !loaded || version != "ridge-test" {
		t.Errorf("ModelStatus() = %v, %q", loaded, version)
	}
}

func TestPredictionServiceInvalidRequest(t *testing.T) {
	f := newServiceFixture(t, true)
	reqs := []models.PredictionRequest{
		{CompetitorAID: 1, CompetitorBID: 1},
		{CompetitorAID: 0, CompetitorBID: 2},
		{CompetitorAID: 1, CompetitorBID: 2, AsOfDate: "01/06/2024"},
	}
	for _, req := range reqs {
		if _, err := f.svc.Predict(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Predict(%+v) err = %v, want ErrInvalidRequest", req, err)
		}
	}
}

func TestPredictionServiceSourceUnavailable(t *testing.T) {
	f := newServiceFixture(t, true)
	f.stats.err = fmt.Errorf("finished count query: %w: timeout", ErrSourceUnavailable)

	_, err := f.svc.Predict(context.Background(), models.PredictionRequest{CompetitorAID: 1, CompetitorBID: 2})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if f.learned.calls+f.rating.calls != 0 {
		t.Error("no predictor should run when the gate cannot decide")
	}
}

func TestPredictionServiceCache(t *testing.T) {
	f := newServiceFixture(t, true)
	req := models.PredictionRequest{CompetitorAID: 1, CompetitorBID: 2, AsOfDate: "2024-06-01"}

	first, err := f.svc.Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	second, err := f.svc.Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if f.learned.calls != 1 {
		t.Errorf("learned predictor ran %d times, want 1", f.learned.calls)
	}
	if first.RequestID == second.RequestID {
		t.Error("cached result should get a fresh request id")
	}
	if second.ModelVersion != first.ModelVersion {
		t.Errorf("cached ModelVersion = %q", second.ModelVersion)
	}
}
