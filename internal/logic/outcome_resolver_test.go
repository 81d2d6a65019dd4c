package logic

import (
	"math"
	"strings"
	"testing"

	"github.com/fixturecast/predictor-api/internal/models"
)

func TestResolveProbabilitiesSumToOne(t *testing.T) {
	r := NewOutcomeResolver(nil)
	for a := 0.0; a <= 5.0; a += 0.25 {
		for b := 0.0; b <= 5.0; b += 0.25 {
			res := r.Resolve(ResolveInput{GoalsA: a, GoalsB: b})
			p := res.Probabilities
			if math.Abs(p.Sum()-1) > 0.001 {
				t.Fatalf("goals %.2f-%.2f: probabilities sum to %v", a, b, p.Sum())
			}
			if p.A < 0 || p.Draw < 0 || p.B < 0 {
				t.Fatalf("goals %.2f-%.2f: negative probability %+v", a, b, p)
			}
			if res.Confidence < 0.5 || res.Confidence > 0.95 {
				t.Fatalf("goals %.2f-%.2f: confidence %v outside [0.5, 0.95]", a, b, res.Confidence)
			}
		}
	}
}

func TestResolveExactTieIsDraw(t *testing.T) {
	res := NewOutcomeResolver(nil).Resolve(ResolveInput{GoalsA: 2.0, GoalsB: 2.0, NameA: "Alpha", NameB: "Beta"})

	if res.Outcome != models.OutcomeDraw || res.PredictedLabel != "Draw" || res.PredictedWinner != "Draw" {
		t.Errorf("2.0-2.0 resolved to %s (%s)", res.Outcome, res.PredictedLabel)
	}
	if res.Probabilities.A != res.Probabilities.B {
		t.Errorf("tie probabilities not symmetric: %+v", res.Probabilities)
	}
	if res.Probabilities.Draw <= res.Probabilities.A {
		t.Errorf("draw should lead on a tie: %+v", res.Probabilities)
	}
}

func TestDecideNearTieForcesDraw(t *testing.T) {
	dec := Decide(models.Probabilities{A: 0.51, Draw: 0.20, B: 0.50}, 0.1)

	if dec.Outcome != models.OutcomeDraw {
		t.Fatalf("Outcome = %s, want Draw", dec.Outcome)
	}
	if !dec.Forced {
		t.Error("Forced should be set when a directional call becomes a draw")
	}
	if math.Abs(dec.Probabilities.Sum()-1) > 1e-9 {
		t.Errorf("probabilities sum to %v", dec.Probabilities.Sum())
	}
	if dec.Probabilities.Draw <= dec.Probabilities.A {
		t.Errorf("forced draw should carry the largest probability: %+v", dec.Probabilities)
	}
	if dec.Confidence > 0.95 {
		t.Errorf("Confidence = %v, above cap", dec.Confidence)
	}
}

func TestDecideDecisive(t *testing.T) {
	tests := []struct {
		name     string
		goalsA   float64
		goalsB   float64
		outcome  models.Outcome
		minConf  float64
		label    string
		dominant bool
	}{
		{"narrow home edge", 1.6, 1.2, models.OutcomeA, 0.5, "Alpha Win", false},
		{"big home win", 3.5, 0.5, models.OutcomeA, 0.9, "Alpha Win", true},
		{"away win", 0.4, 2.6, models.OutcomeB, 0.8, "Beta Win", true},
	}
	r := NewOutcomeResolver(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(ResolveInput{GoalsA: tt.goalsA, GoalsB: tt.goalsB, NameA: "Alpha", NameB: "Beta"})
			if res.Outcome != tt.outcome || res.PredictedLabel != tt.label {
				t.Fatalf("Resolve() = %s (%s), want %s", res.Outcome, res.PredictedLabel, tt.label)
			}
			if res.Confidence < tt.minConf || res.Confidence > 0.95 {
				t.Errorf("Confidence = %v, want in [%v, 0.95]", res.Confidence, tt.minConf)
			}
			var dominates bool
			for _, in := range res.Insights {
				if strings.HasPrefix(in, "Expect ") {
					dominates = true
				}
			}
			if dominates != tt.dominant {
				t.Errorf("dominate insight = %v, want %v in %q", dominates, tt.dominant, res.Insights)
			}
		})
	}
}

func TestResolveClampsNegativeGoals(t *testing.T) {
	res := NewOutcomeResolver(nil).Resolve(ResolveInput{GoalsA: -0.7, GoalsB: 1.1})
	if res.GoalsA != 0 {
		t.Errorf("GoalsA = %v, want 0", res.GoalsA)
	}
	if res.NameA != "Team A" || res.NameB != "Team B" {
		t.Errorf("default names = %q/%q", res.NameA, res.NameB)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   models.Probabilities
		ok   bool
	}{
		{"within tolerance", models.Probabilities{A: 0.4, Draw: 0.3, B: 0.31}, true},
		{"sum too high", models.Probabilities{A: 0.6, Draw: 0.3, B: 0.4}, false},
		{"negative", models.Probabilities{A: 1.1, Draw: 0.1, B: -0.2}, false},
		{"all zero", models.Probabilities{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize(tt.in)
			if ok != tt.ok {
				t.Errorf("ok = %v, want %v", ok, tt.ok)
			}
			if math.Abs(got.Sum()-1) > 1e-9 || got.A < 0 || got.Draw < 0 || got.B < 0 {
				t.Errorf("normalize(%+v) = %+v", tt.in, got)
			}
		})
	}
}
