package logic

import (
	"fmt"
	"math"

	"github.com/fixturecast/predictor-api/internal/models"
)

const (
	maxInsights = 6
	minInsights = 3

	qualityGapThreshold  = 15
	xgGapThreshold       = 0.5
	formGapThreshold     = 0.15
	defenseGapThreshold  = 0.5
	h2hStrongRate        = 0.6
	h2hWeakRate          = 0.4
	dominantGoalMargin   = 1.5
	closeGoalMargin      = 0.5
	highConfidenceCutoff = 0.8
	lowConfidenceCutoff  = 0.6
)

// learnedInsights explains a learned-path result. a is the vector with A
// attacking B and b the vector with B attacking A. Directional lines only
// fire for the side the result already favours.
func learnedInsights(res *models.PredictionResult, a, b models.FeatureVector) []string {
	var out []string
	favours := func(o models.Outcome) bool { return res.Outcome == o }
	draw := res.Outcome == models.OutcomeDraw

	if qd := a.QualityDifference; math.Abs(qd) > qualityGapThreshold {
		if o, name := side(qd, res); favours(o) {
			out = append(out, fmt.Sprintf("%s has significantly superior squad quality (%.0f point rating gap)", name, math.Abs(qd)))
		}
	}

	if xd := a.TeamXGPerGame - b.TeamXGPerGame; math.Abs(xd) > xgGapThreshold {
		if o, name := side(xd, res); favours(o) {
			hi, lo := a.TeamXGPerGame, b.TeamXGPerGame
			if o == models.OutcomeB {
				hi, lo = lo, hi
			}
			out = append(out, fmt.Sprintf("%s creates more scoring chances (%.1f vs %.1f xG/game)", name, hi, lo))
		}
	}

	fd := a.TeamFormLast5 - b.TeamFormLast5
	switch {
	case math.Abs(fd) > formGapThreshold:
		if o, name := side(fd, res); favours(o) {
			out = append(out, fmt.Sprintf("%s in better recent form", name))
		}
	case draw:
		out = append(out, "Both teams in similar recent form")
	}

	// b.OpponentGoalsConceded is what A concedes; a.OpponentGoalsConceded is B's.
	if dd := a.OpponentGoalsConceded - b.OpponentGoalsConceded; math.Abs(dd) > defenseGapThreshold {
		if o, name := side(dd, res); favours(o) {
			out = append(out, fmt.Sprintf("%s has superior defensive organization", name))
		}
	}

	switch rate := a.H2HWinRate; {
	case rate > h2hStrongRate && favours(models.OutcomeA):
		out = append(out, fmt.Sprintf("%s has historical advantage (%.0f%% win rate)", res.NameA, rate*100))
	case rate < h2hWeakRate && favours(models.OutcomeB):
		out = append(out, fmt.Sprintf("%s has the upper hand in recent meetings (%s won only %.0f%%)", res.NameB, res.NameA, rate*100))
	}

	out = append(out, baseInsights(res)...)
	return padInsights(out, res)
}

// baseInsights are the scoreline and confidence lines shared by every path.
func baseInsights(res *models.PredictionResult) []string {
	var out []string
	margin := math.Abs(res.GoalsA - res.GoalsB)
	switch {
	case margin > dominantGoalMargin && res.Outcome != models.OutcomeDraw:
		out = append(out, fmt.Sprintf("Expect %s to dominate (%.1f - %.1f)", res.PredictedWinner, res.GoalsA, res.GoalsB))
	case margin < closeGoalMargin:
		out = append(out, fmt.Sprintf("Closely contested match expected (%.1f - %.1f)", res.GoalsA, res.GoalsB))
	}
	out = append(out, confidenceInsight(res)...)
	return out
}

func confidenceInsight(res *models.PredictionResult) []string {
	switch {
	case res.Confidence > highConfidenceCutoff && res.Outcome == models.OutcomeDraw:
		return []string{"High confidence in a draw"}
	case res.Confidence > highConfidenceCutoff:
		return []string{fmt.Sprintf("High confidence in %s victory", res.PredictedWinner)}
	case res.Confidence < lowConfidenceCutoff:
		return []string{"Uncertain outcome - could go either way"}
	}
	return nil
}

// padInsights caps the list and fills it up to the minimum with neutral lines.
func padInsights(in []string, res *models.PredictionResult) []string {
	fillers := []string{
		"Both teams showing competitive form",
		fmt.Sprintf("Venue advantage applied to %s", res.NameA),
		fmt.Sprintf("Predicted scoreline: %.1f - %.1f", res.GoalsA, res.GoalsB),
	}
	out := make([]string, 0, maxInsights)
	seen := make(map[string]bool, maxInsights)
	for _, s := range in {
		if len(out) == maxInsights {
			break
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range fillers {
		if len(out) >= minInsights {
			break
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// side maps a signed A-minus-B differential to the team it favours.
func side(diff float64, res *models.PredictionResult) (models.Outcome, string) {
	if diff > 0 {
		return models.OutcomeA, res.NameA
	}
	return models.OutcomeB, res.NameB
}
