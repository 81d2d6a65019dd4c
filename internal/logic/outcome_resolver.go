package logic

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fixturecast/predictor-api/internal/models"
)

const (
	nearTieMargin     = 0.02
	nearTieDrawWeight = 0.15
	nearTieSideWeight = 0.425

	probabilityTolerance = 0.02
	maxConfidence        = 0.95

	defaultNameA = "Team A"
	defaultNameB = "Team B"
)

// Decision is the outcome chosen for a set of probabilities.
type Decision struct {
	Probabilities models.Probabilities
	Outcome       models.Outcome
	Confidence    float64
	Forced        bool
	// Renormalized is set when the pre-normalization values were outside tolerance.
	Renormalized  bool
}

// RawProbabilities maps two goal estimates to unnormalized win/draw/loss
// probabilities.
func RawProbabilities(goalsA, goalsB float64) models.Probabilities {
	d := goalsA - goalsB
	ad := math.Abs(d)
	if ad > 1.0 {
		winner := math.Min(0.85, 0.5+0.15*ad)
		loser := math.Max(0.05, 0.5-0.20*ad)
		draw := 1 - winner - loser
		if d > 0 {
			return models.Probabilities{A: winner, Draw: draw, B: loser}
		}
		return models.Probabilities{A: loser, Draw: draw, B: winner}
	}
	pA := 0.5 + 0.1*d
	pB := 0.5 - 0.1*d
	return models.Probabilities{A: pA, Draw: math.Max(0.2, 1-pA-pB), B: pB}
}

// Decide picks the outcome for raw probabilities. goalDiff is goalsA - goalsB.
// Directional calls closer than nearTieMargin become draws. The returned
// probabilities always sum to 1.
func Decide(raw models.Probabilities, goalDiff float64) Decision {
	dec := Decision{Probabilities: raw}

	switch {
	case raw.A >= raw.B && raw.A >= raw.Draw:
		dec.Outcome = models.OutcomeA
	case raw.B > raw.A && raw.B >= raw.Draw:
		dec.Outcome = models.OutcomeB
	default:
		dec.Outcome = models.OutcomeDraw
	}

	drawWeight := raw.Draw
	if math.Abs(raw.A-raw.B) < nearTieMargin {
		sides := raw.A + raw.B
		drawWeight = 1 - sides*nearTieDrawWeight
		dec.Probabilities = models.Probabilities{
			A:    sides * nearTieSideWeight,
			Draw: drawWeight,
			B:    sides * nearTieSideWeight,
		}
		dec.Forced = dec.Outcome != models.OutcomeDraw
		dec.Outcome = models.OutcomeDraw
	}

	adjusted := dec.Probabilities
	var ok bool
	dec.Probabilities, ok = normalize(adjusted)
	dec.Renormalized = !ok

	switch dec.Outcome {
	case models.OutcomeA:
		dec.Confidence = decisiveConfidence(goalDiff)
	case models.OutcomeB:
		dec.Confidence = decisiveConfidence(-goalDiff)
	default:
		dec.Confidence = math.Min(maxConfidence, 0.6+drawWeight*0.3)
	}
	return dec
}

func decisiveConfidence(winnerGoalDiff float64) float64 {
	return clamp(0.5+math.Min(0.45, winnerGoalDiff*0.15), 0.5, maxConfidence)
}

// normalize rescales p to sum to 1. ok is false when the input was outside
// tolerance, either a value outside [0,1] or a sum outside 1±0.02.
func normalize(p models.Probabilities) (models.Probabilities, bool) {
	p.A = math.Max(0, p.A)
	p.Draw = math.Max(0, p.Draw)
	p.B = math.Max(0, p.B)

	sum := p.Sum()
	ok := p.A <= 1 && p.Draw <= 1 && p.B <= 1 && math.Abs(sum-1) <= probabilityTolerance
	if sum <= 0 {
		return models.Probabilities{A: 1.0 / 3, Draw: 1.0 / 3, B: 1.0 / 3}, false
	}
	return models.Probabilities{A: p.A / sum, Draw: p.Draw / sum, B: p.B / sum}, ok
}

// ResolveInput carries both goal estimates and, on the learned path, the two
// feature vectors the estimates came from.
type ResolveInput struct {
	GoalsA    float64
	GoalsB    float64
	NameA     string
	NameB     string
	FeaturesA *models.FeatureVector
	FeaturesB *models.FeatureVector
}

// OutcomeResolver turns two goal estimates into a full PredictionResult.
type OutcomeResolver struct {
	logger *zap.SugaredLogger
}

func NewOutcomeResolver(logger *zap.SugaredLogger) *OutcomeResolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &OutcomeResolver{logger: logger}
}

// Resolve builds the result. ModelVersion and RequestID are left to the caller.
func (r *OutcomeResolver) Resolve(in ResolveInput) *models.PredictionResult {
	goalsA := math.Max(0, in.GoalsA)
	goalsB := math.Max(0, in.GoalsB)
	nameA, nameB := displayNames(in.NameA, in.NameB)

	raw := RawProbabilities(goalsA, goalsB)
	dec := Decide(raw, goalsA-goalsB)
	if dec.Renormalized {
		probabilityRenormalizations.Inc()
		r.logger.Debugw("Renormalized probabilities",
			"goals_a", goalsA, "goals_b", goalsB,
			"prob_a", raw.A, "prob_draw", raw.Draw, "prob_b", raw.B,
			"forced_draw", dec.Forced,
		)
	}

	res := &models.PredictionResult{
		NameA:         nameA,
		NameB:         nameB,
		GoalsA:        goalsA,
		GoalsB:        goalsB,
		Probabilities: dec.Probabilities,
		Outcome:       dec.Outcome,
		Confidence:    dec.Confidence,
		GeneratedAt:   time.Now().UTC(),
	}
	res.PredictedLabel, res.PredictedWinner = outcomeLabels(dec.Outcome, nameA, nameB)

	if in.FeaturesA != nil && in.FeaturesB != nil {
		res.Insights = learnedInsights(res, *in.FeaturesA, *in.FeaturesB)
		res.KeyFeatures = learnedKeyFeatures(*in.FeaturesA, *in.FeaturesB)
	} else {
		res.Insights = padInsights(baseInsights(res), res)
	}
	return res
}

func displayNames(a, b string) (string, string) {
	if a == "" {
		a = defaultNameA
	}
	if b == "" {
		b = defaultNameB
	}
	return a, b
}

func outcomeLabels(o models.Outcome, nameA, nameB string) (label, winner string) {
	switch o {
	case models.OutcomeA:
		return nameA + " Win", nameA
	case models.OutcomeB:
		return nameB + " Win", nameB
	default:
		return "Draw", "Draw"
	}
}

func learnedKeyFeatures(a, b models.FeatureVector) map[string]float64 {
	return map[string]float64{
		"quality_difference":  a.QualityDifference,
		"attack_vs_defense_a": a.AttackVsDefense,
		"attack_vs_defense_b": b.AttackVsDefense,
		"xg_per_game_a":       a.TeamXGPerGame,
		"xg_per_game_b":       b.TeamXGPerGame,
		"form_last_5_a":       a.TeamFormLast5,
		"form_last_5_b":       b.TeamFormLast5,
		"h2h_win_rate_a":      a.H2HWinRate,
	}
}
