package oracle

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/fixturecast/predictor-api/internal/models"
)

// DefaultHoldoutFraction and DefaultSeed reproduce the 80/20 split used for
// every published artifact.
const (
	DefaultHoldoutFraction = 0.2
	DefaultSeed            = 42
)

// Metrics summarize goal-prediction error on held-out samples.
type Metrics struct {
	Samples       int     `json:"samples"`
	MAE           float64 `json:"mae"`
	RMSE          float64 `json:"rmse"`
	WithinOneGoal float64 `json:"within_one_goal"`
}

// Split shuffles by match so both samples of a fixture land on the same side.
func Split(samples []models.MatchSample, holdout float64, seed int64) (train, test []models.MatchSample) {
	if holdout <= 0 {
		return samples, nil
	}
	byMatch := make(map[int64][]models.MatchSample)
	var order []int64
	for _, s := range samples {
		if _, ok := byMatch[s.MatchID]; !ok {
			order = append(order, s.MatchID)
		}
		byMatch[s.MatchID] = append(byMatch[s.MatchID], s)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	cut := int(math.Round(float64(len(order)) * holdout))
	for i, id := range order {
		if i < cut {
			test = append(test, byMatch[id]...)
		} else {
			train = append(train, byMatch[id]...)
		}
	}
	return train, test
}

// Evaluate scores s on samples, clamping predictions at zero as callers do.
func Evaluate(s *Snapshot, samples []models.MatchSample) Metrics {
	m := Metrics{Samples: len(samples)}
	if len(samples) == 0 {
		return m
	}
	var absSum, sqSum float64
	within := 0
	for _, sample := range samples {
		pred := math.Max(0, s.PredictGoals(sample.Features))
		e := pred - sample.Goals
		absSum += math.Abs(e)
		sqSum += e * e
		if math.Abs(e) <= 1 {
			within++
		}
	}
	n := float64(len(samples))
	m.MAE = absSum / n
	m.RMSE = math.Sqrt(sqSum / n)
	m.WithinOneGoal = float64(within) / n
	return m
}

// TrainOptions configure Train.
type TrainOptions struct {
	Lambda          float64
	HoldoutFraction float64
	Seed            int64
	Version         string
}

// Train fits on the training split and records holdout metrics in the artifact.
func Train(samples []models.MatchSample, opts TrainOptions) (*Artifact, error) {
	train, test := Split(samples, opts.HoldoutFraction, opts.Seed)
	if len(train) == 0 {
		return nil, fmt.Errorf("train: %d samples leave an empty training split", len(samples))
	}
	a, err := Fit(train, FitOptions{Lambda: opts.Lambda, Version: opts.Version})
	if err != nil {
		return nil, err
	}
	if len(test) > 0 {
		snap, err := NewSnapshot(a)
		if err != nil {
			return nil, err
		}
		metrics := Evaluate(snap, test)
		a.Metrics = &metrics
	}
	return a, nil
}
