package oracle

import (
	"testing"

	"github.com/fixturecast/predictor-api/internal/models"
)

func TestSplitKeepsMatchesTogether(t *testing.T) {
	samples := linearSamples(100)
	train, test := Split(samples, 0.2, DefaultSeed)

	if len(train)+len(test) != len(samples) {
		t.Fatalf("split lost samples: %d + %d != %d", len(train), len(test), len(samples))
	}
	if len(test) != 20 {
		t.Errorf("holdout has %d samples, want 20", len(test))
	}
	inTest := make(map[int64]bool)
	for _, s := range test {
		inTest[s.MatchID] = true
	}
	for _, s := range train {
		if inTest[s.MatchID] {
			t.Fatalf("match %d appears on both sides", s.MatchID)
		}
	}

	again, _ := Split(samples, 0.2, DefaultSeed)
	for i := range train {
		if train[i].MatchID != again[i].MatchID || train[i].AttackerID != again[i].AttackerID {
			t.Fatal("same seed produced a different split")
		}
	}
}

func TestSplitNoHoldout(t *testing.T) {
	samples := linearSamples(10)
	train, test := Split(samples, 0, DefaultSeed)
	if len(train) != 10 || test != nil {
		t.Errorf("Split(0) = %d/%d", len(train), len(test))
	}
}

func TestEvaluate(t *testing.T) {
	a := trainedArtifact(t)
	snap, err := NewSnapshot(a)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}

	samples := []models.MatchSample{
		{Features: models.FeatureVector{TeamXGPerGame: 1.0, TeamQualityRating: 40}, Goals: 0},
		{Features: models.FeatureVector{TeamXGPerGame: 1.0, TeamQualityRating: 40}, Goals: 5},
	}
	m := Evaluate(snap, samples)
	if m.Samples != 2 {
		t.Errorf("Samples = %d", m.Samples)
	}
	if m.MAE <= 0 || m.RMSE < m.MAE {
		t.Errorf("MAE/RMSE = %v/%v", m.MAE, m.RMSE)
	}
	if m.WithinOneGoal != 0.5 && m.WithinOneGoal != 0 {
		t.Errorf("WithinOneGoal = %v", m.WithinOneGoal)
	}
	if Evaluate(snap, nil).Samples != 0 {
		t.Error("empty evaluation should report zero samples")
	}
}

func TestTrainRecordsHoldoutMetrics(t *testing.T) {
	a, err := Train(linearSamples(120), TrainOptions{Lambda: 0.01, HoldoutFraction: DefaultHoldoutFraction, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if a.Metrics == nil {
		t.Fatal("Train should attach holdout metrics")
	}
	if a.Metrics.Samples != 24 || a.SampleCount != 96 {
		t.Errorf("holdout/train = %d/%d, want 24/96", a.Metrics.Samples, a.SampleCount)
	}
	if a.Metrics.MAE > 0.05 {
		t.Errorf("MAE on a noiseless relation = %v", a.Metrics.MAE)
	}
	if _, err := Train(nil, TrainOptions{}); err == nil {
		t.Error("expected error for empty corpus")
	}
}
