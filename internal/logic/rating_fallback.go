package logic

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fixturecast/predictor-api/internal/models"
)

// Model version tags for the rating path.
const (
	RatingModelVersion     = "international-elo-xg-v2.0"
	NoArtifactModelVersion = "fallback-no-artifact-v1.0"
)

const (
	NeutralRating   = 1700.0
	homeRatingBonus = 50.0

	eloScale      = 400.0
	drawPeak      = 0.8
	drawWidth     = 200.0
	minRatingGoal = 0.2

	winConfidenceSpan  = 0.45
	drawConfidenceSpan = 0.3
)

// ratingGoalAnchors maps rating to expected goals per game. Values outside
// the anchors extrapolate along the end segments.
var ratingGoalAnchors = [][2]float64{
	{1400, 0.8},
	{1700, 1.5},
	{2000, 2.2},
}

// DefaultRatings is the built-in strength table on the 1400-2100 scale.
var DefaultRatings = map[string]float64{
	"Brazil": 2050, "Argentina": 2040, "France": 2030, "England": 2020, "Spain": 2010,
	"Germany": 1990, "Portugal": 1980, "Netherlands": 1970, "Belgium": 1960, "Italy": 1950,
	"Croatia": 1900, "Uruguay": 1890, "Colombia": 1880, "Mexico": 1870, "Switzerland": 1860,
	"USA": 1850, "Senegal": 1840, "Japan": 1830, "Morocco": 1820, "Korea Republic": 1810,
	"Denmark": 1800, "Austria": 1790, "Ecuador": 1780, "Tunisia": 1770, "Poland": 1760,
	"Australia": 1730, "Canada": 1720, "IR Iran": 1710, "Saudi Arabia": 1700, "Egypt": 1690,
	"Norway": 1680, "Scotland": 1670, "Ghana": 1660, "Côte d'Ivoire": 1650, "Algeria": 1640,
	"South Africa": 1630, "Qatar": 1620, "Panama": 1610, "Paraguay": 1600, "Uzbekistan": 1590,
	"Jordan": 1560, "Cabo Verde": 1550, "New Zealand": 1540, "Curaçao": 1530, "Haiti": 1520,
}

// RatingPredictor is the closed-form strategy for competitors without enough
// history. Competitor A is treated as the home side.
type RatingPredictor struct {
	ratings map[string]float64
	version string
}

// NewRatingPredictor merges overrides over DefaultRatings. The table is
// copied and never written after construction.
func NewRatingPredictor(overrides map[string]float64, version string) *RatingPredictor {
	ratings := make(map[string]float64, len(DefaultRatings)+len(overrides))
	for name, r := range DefaultRatings {
		ratings[normalizeName(name)] = r
	}
	for name, r := range overrides {
		ratings[normalizeName(name)] = r
	}
	if version == "" {
		version = RatingModelVersion
	}
	return &RatingPredictor{ratings: ratings, version: version}
}

// Rating returns the table value for name, or NeutralRating.
func (p *RatingPredictor) Rating(name string) float64 {
	if r, ok := p.ratings[normalizeName(name)]; ok {
		return r
	}
	return NeutralRating
}

func (p *RatingPredictor) Predict(_ context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	nameA, nameB := displayNames(req.CompetitorAName, req.CompetitorBName)
	ratingA := p.Rating(nameA) + homeRatingBonus
	ratingB := p.Rating(nameB)
	diff := ratingA - ratingB

	expected := 1 / (1 + math.Pow(10, -diff/eloScale))
	rawDraw := drawPeak * math.Exp(-math.Pow(diff/drawWidth, 2))
	total := 1 + rawDraw
	probs := models.Probabilities{
		A:    expected / total,
		Draw: rawDraw / total,
		B:    (1 - expected) / total,
	}

	res := &models.PredictionResult{
		NameA:         nameA,
		NameB:         nameB,
		GoalsA:        ratingToGoals(ratingA),
		GoalsB:        ratingToGoals(ratingB),
		Probabilities: probs,
		ModelVersion:  p.version,
		GeneratedAt:   time.Now().UTC(),
	}

	switch {
	case probs.A >= probs.B && probs.A >= probs.Draw:
		res.Outcome = models.OutcomeA
		res.Confidence = winConfidence(probs.A)
	case probs.B > probs.A && probs.B >= probs.Draw:
		res.Outcome = models.OutcomeB
		res.Confidence = winConfidence(probs.B)
	default:
		res.Outcome = models.OutcomeDraw
		res.Confidence = math.Min(maxConfidence, 0.5+math.Min(drawConfidenceSpan, probs.Draw-1.0/3))
	}
	res.PredictedLabel, res.PredictedWinner = outcomeLabels(res.Outcome, nameA, nameB)
	res.Insights = ratingInsights(res, diff)
	res.KeyFeatures = map[string]float64{
		"rating_a":          p.Rating(nameA),
		"rating_b":          ratingB,
		"rating_difference": diff,
		"xg_a":              res.GoalsA,
		"xg_b":              res.GoalsB,
	}
	return res, nil
}

func winConfidence(p float64) float64 {
	return clamp(0.5+math.Min(winConfidenceSpan, p-0.5), 0.5, maxConfidence)
}

// ratingToGoals interpolates expected goals per game from a rating.
func ratingToGoals(rating float64) float64 {
	a := ratingGoalAnchors
	seg := 0
	for seg < len(a)-2 && rating > a[seg+1][0] {
		seg++
	}
	x0, y0 := a[seg][0], a[seg][1]
	x1, y1 := a[seg+1][0], a[seg+1][1]
	goals := y0 + (rating-x0)*(y1-y0)/(x1-x0)
	return math.Max(minRatingGoal, goals)
}

func ratingInsights(res *models.PredictionResult, diff float64) []string {
	var out []string
	gap := math.Abs(diff)
	stronger, strongerOutcome := res.NameA, models.OutcomeA
	if diff < 0 {
		stronger, strongerOutcome = res.NameB, models.OutcomeB
	}

	switch {
	case gap > 200 && res.Outcome == strongerOutcome:
		out = append(out, fmt.Sprintf("%s has significantly superior squad quality (Elo: %.0f point advantage)", stronger, gap))
	case gap > 100 && res.Outcome == strongerOutcome:
		out = append(out, fmt.Sprintf("%s has the edge in quality (Elo: %.0f points)", stronger, gap))
	default:
		out = append(out, fmt.Sprintf("Evenly matched teams (Elo difference: %.0f points)", gap))
	}

	switch {
	case res.GoalsA > res.GoalsB+xgGapThreshold && res.Outcome == models.OutcomeA:
		out = append(out, fmt.Sprintf("%s expected to create more chances (%.1f vs %.1f xG)", res.NameA, res.GoalsA, res.GoalsB))
	case res.GoalsB > res.GoalsA+xgGapThreshold && res.Outcome == models.OutcomeB:
		out = append(out, fmt.Sprintf("%s expected to create more chances (%.1f vs %.1f xG)", res.NameB, res.GoalsB, res.GoalsA))
	}

	out = append(out, fmt.Sprintf("Predicted scoreline: %.1f - %.1f", res.GoalsA, res.GoalsB))
	out = append(out, confidenceInsight(res)...)
	return padInsights(out, res)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
