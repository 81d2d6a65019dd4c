package models

import "fmt"

// FeatureCount is the fixed width of every FeatureVector.
const FeatureCount = 31

// FeatureNames lists the vector fields in model order. Artifacts record this
// list and refuse to score vectors built against a different order.
var FeatureNames = [FeatureCount]string{
	"team_quality_rating",
	"opponent_quality_rating",
	"team_xg_per_game",
	"team_goals_per_game",
	"team_shots_per_game",
	"team_striker_xg",
	"team_playmaker_assists",
	"team_formation_attack",
	"team_pressing_intensity",
	"team_possession_avg",
	"opponent_xg_conceded",
	"opponent_goals_conceded",
	"opponent_defensive_rating",
	"opponent_goalkeeper_save_pct",
	"opponent_tackles_per_game",
	"opponent_formation_defense",
	"venue_factor",
	"rest_days",
	"travel_distance",
	"injury_impact",
	"h2h_goals_scored_avg",
	"h2h_goals_conceded_avg",
	"h2h_win_rate",
	"team_form_last_5",
	"team_form_last_10",
	"team_momentum",
	"opponent_form_last_5",
	"coach_win_rate",
	"tactical_matchup_score",
	"quality_difference",
	"attack_vs_defense",
}

// FeatureVector describes one competitor attacking another on a given date.
// Fields are grouped the same way FeatureNames orders them.
type FeatureVector struct {
	// Quality
	TeamQualityRating     float64 `json:"team_quality_rating"`
	OpponentQualityRating float64 `json:"opponent_quality_rating"`

	// Attack (team)
	TeamXGPerGame         float64 `json:"team_xg_per_game"`
	TeamGoalsPerGame      float64 `json:"team_goals_per_game"`
	TeamShotsPerGame      float64 `json:"team_shots_per_game"`
	TeamStrikerXG         float64 `json:"team_striker_xg"`
	TeamPlaymakerAssists  float64 `json:"team_playmaker_assists"`
	TeamFormationAttack   float64 `json:"team_formation_attack"`
	TeamPressingIntensity float64 `json:"team_pressing_intensity"`
	TeamPossessionAvg     float64 `json:"team_possession_avg"`

	// Defense (opponent)
	OpponentXGConceded        float64 `json:"opponent_xg_conceded"`
	OpponentGoalsConceded     float64 `json:"opponent_goals_conceded"`
	OpponentDefensiveRating   float64 `json:"opponent_defensive_rating"`
	OpponentGoalkeeperSavePct float64 `json:"opponent_goalkeeper_save_pct"`
	OpponentTacklesPerGame    float64 `json:"opponent_tackles_per_game"`
	OpponentFormationDefense  float64 `json:"opponent_formation_defense"`

	// Context
	VenueFactor    float64 `json:"venue_factor"`
	RestDays       float64 `json:"rest_days"`
	TravelDistance float64 `json:"travel_distance"`
	InjuryImpact   float64 `json:"injury_impact"`

	// Head-to-head
	H2HGoalsScoredAvg   float64 `json:"h2h_goals_scored_avg"`
	H2HGoalsConcededAvg float64 `json:"h2h_goals_conceded_avg"`
	H2HWinRate          float64 `json:"h2h_win_rate"`

	// Form
	TeamFormLast5     float64 `json:"team_form_last_5"`
	TeamFormLast10    float64 `json:"team_form_last_10"`
	TeamMomentum      float64 `json:"team_momentum"`
	OpponentFormLast5 float64 `json:"opponent_form_last_5"`

	// Tactical
	CoachWinRate         float64 `json:"coach_win_rate"`
	TacticalMatchupScore float64 `json:"tactical_matchup_score"`

	// Derived
	QualityDifference float64 `json:"quality_difference"`
	AttackVsDefense   float64 `json:"attack_vs_defense"`
}

// Values returns the fields in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.TeamQualityRating,
		v.OpponentQualityRating,
		v.TeamXGPerGame,
		v.TeamGoalsPerGame,
		v.TeamShotsPerGame,
		v.TeamStrikerXG,
		v.TeamPlaymakerAssists,
		v.TeamFormationAttack,
		v.TeamPressingIntensity,
		v.TeamPossessionAvg,
		v.OpponentXGConceded,
		v.OpponentGoalsConceded,
		v.OpponentDefensiveRating,
		v.OpponentGoalkeeperSavePct,
		v.OpponentTacklesPerGame,
		v.OpponentFormationDefense,
		v.VenueFactor,
		v.RestDays,
		v.TravelDistance,
		v.InjuryImpact,
		v.H2HGoalsScoredAvg,
		v.H2HGoalsConcededAvg,
		v.H2HWinRate,
		v.TeamFormLast5,
		v.TeamFormLast10,
		v.TeamMomentum,
		v.OpponentFormLast5,
		v.CoachWinRate,
		v.TacticalMatchupScore,
		v.QualityDifference,
		v.AttackVsDefense,
	}
}

// Named returns the vector as a name→value map, mostly for logging and audit rows.
func (v FeatureVector) Named() map[string]float64 {
	vals := v.Values()
	out := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		out[name] = vals[i]
	}
	return out
}

// FeatureVectorFromValues rebuilds a vector from an ordered slice.
func FeatureVectorFromValues(vals []float64) (FeatureVector, error) {
	if len(vals) != FeatureCount {
		return FeatureVector{}, fmt.Errorf("feature vector needs %d values, got %d", FeatureCount, len(vals))
	}
	return FeatureVector{
		TeamQualityRating:         vals[0],
		OpponentQualityRating:     vals[1],
		TeamXGPerGame:             vals[2],
		TeamGoalsPerGame:          vals[3],
		TeamShotsPerGame:          vals[4],
		TeamStrikerXG:             vals[5],
		TeamPlaymakerAssists:      vals[6],
		TeamFormationAttack:       vals[7],
		TeamPressingIntensity:     vals[8],
		TeamPossessionAvg:         vals[9],
		OpponentXGConceded:        vals[10],
		OpponentGoalsConceded:     vals[11],
		OpponentDefensiveRating:   vals[12],
		OpponentGoalkeeperSavePct: vals[13],
		OpponentTacklesPerGame:    vals[14],
		OpponentFormationDefense:  vals[15],
		VenueFactor:               vals[16],
		RestDays:                  vals[17],
		TravelDistance:            vals[18],
		InjuryImpact:              vals[19],
		H2HGoalsScoredAvg:         vals[20],
		H2HGoalsConcededAvg:       vals[21],
		H2HWinRate:                vals[22],
		TeamFormLast5:             vals[23],
		TeamFormLast10:            vals[24],
		TeamMomentum:              vals[25],
		OpponentFormLast5:         vals[26],
		CoachWinRate:              vals[27],
		TacticalMatchupScore:      vals[28],
		QualityDifference:         vals[29],
		AttackVsDefense:           vals[30],
	}, nil
}

// MatchSample pairs a feature vector with the goals the attacker actually scored.
type MatchSample struct {
	MatchID    int64         `json:"match_id"`
	AttackerID int64         `json:"attacker_id"`
	DefenderID int64         `json:"defender_id"`
	AtVenue    bool          `json:"at_venue"`
	Features   FeatureVector `json:"features"`
	Goals      float64       `json:"goals"`
}
