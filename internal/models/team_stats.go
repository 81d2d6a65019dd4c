package models

import "time"

// MatchResult is the outcome of a finished match from one team's perspective.
type MatchResult string

const (
	ResultWin  MatchResult = "W"
	ResultDraw MatchResult = "D"
	ResultLoss MatchResult = "L"
)

// Points returns league points for the result (3/1/0).
func (r MatchResult) Points() int {
	switch r {
	case ResultWin:
		return 3
	case ResultDraw:
		return 1
	default:
		return 0
	}
}

// ResultFor derives a result from a scoreline.
func ResultFor(goalsFor, goalsAgainst int) MatchResult {
	switch {
	case goalsFor > goalsAgainst:
		return ResultWin
	case goalsFor < goalsAgainst:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// TeamMatch is a finished match seen from one team.
type TeamMatch struct {
	MatchID      int64       `json:"match_id"`
	Date         time.Time   `json:"date"`
	OpponentID   int64       `json:"opponent_id"`
	AtHome       bool        `json:"at_home"`
	GoalsFor     int         `json:"goals_for"`
	GoalsAgainst int         `json:"goals_against"`
	Result       MatchResult `json:"result"`
}

// MatchRecord is a fixture row from the historical corpus.
// HomeScore and AwayScore are nil until the match is finished.
type MatchRecord struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	HomeScore  *int      `json:"home_score"`
	AwayScore  *int      `json:"away_score"`
	Status     string    `json:"status"`
}

// Finished reports whether both final scores are known.
func (m MatchRecord) Finished() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// TeamProfile carries measured per-team aggregates when the analytics store
// has them. Nil fields were not measured.
type TeamProfile struct {
	XGPerGame         *float64 `json:"xg_per_game,omitempty"`
	ShotsPerGame      *float64 `json:"shots_per_game,omitempty"`
	PossessionAvg     *float64 `json:"possession_avg,omitempty"`
	PressingIntensity *float64 `json:"pressing_intensity,omitempty"`
	TopScorerXG       *float64 `json:"top_scorer_xg,omitempty"`
	AssistsPerGame    *float64 `json:"assists_per_game,omitempty"`
	XGConcededPerGame *float64 `json:"xg_conceded_per_game,omitempty"`
	TacklesPerGame    *float64 `json:"tackles_per_game,omitempty"`
	SavePct           *float64 `json:"save_pct,omitempty"`
	CoachWinRate      *float64 `json:"coach_win_rate,omitempty"`
}

// TeamStatsSnapshot is the windowed aggregate view of one competitor used to
// fill a FeatureVector. It is recomputed for every request.
type TeamStatsSnapshot struct {
	TeamID  int64     `json:"team_id"`
	AsOf    time.Time `json:"as_of"`
	Quality float64   `json:"quality"`

	GoalsPerGame      float64 `json:"goals_per_game"`
	XGPerGame         float64 `json:"xg_per_game"`
	ShotsPerGame      float64 `json:"shots_per_game"`
	PossessionAvg     float64 `json:"possession_avg"`
	PressingIntensity float64 `json:"pressing_intensity"`
	StrikerXG         float64 `json:"striker_xg"`
	AssistsPerGame    float64 `json:"assists_per_game"`
	FormationAttack   float64 `json:"formation_attack"`

	GoalsConcededPerGame float64 `json:"goals_conceded_per_game"`
	XGConcededPerGame    float64 `json:"xg_conceded_per_game"`
	DefensiveRating      float64 `json:"defensive_rating"`
	SavePct              float64 `json:"save_pct"`
	TacklesPerGame       float64 `json:"tackles_per_game"`
	FormationDefense     float64 `json:"formation_defense"`

	FormLast5    float64 `json:"form_last_5"`
	FormLast10   float64 `json:"form_last_10"`
	RestDays     float64 `json:"rest_days"`
	Unavailable  int     `json:"unavailable"`
	CoachWinRate float64 `json:"coach_win_rate"`
}
