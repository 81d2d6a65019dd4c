package logic

// FeatureDefaults is the single table of fallback values used whenever a
// statistic cannot be read or has no qualifying rows.
var FeatureDefaults = struct {
	Quality float64

	GoalsPerGame      float64
	XGPerGame         float64
	ShotsPerGame      float64
	StrikerXG         float64
	PlaymakerAssists  float64
	FormationAttack   float64
	PressingIntensity float64
	PossessionAvg     float64

	GoalsConceded    float64
	XGConceded       float64
	DefensiveRating  float64
	SavePct          float64
	TacklesPerGame   float64
	FormationDefense float64

	VenueHome       float64
	VenueAway       float64
	RestDays        float64
	RestDaysCap     float64
	TravelAway      float64
	InjuryPerPlayer float64
	InjuryCap       float64

	H2HGoalsScored   float64
	H2HGoalsConceded float64
	H2HWinRate       float64

	Form     float64
	Momentum float64

	CoachWinRate    float64
	TacticalMatchup float64
}{
	Quality: 50.0,

	GoalsPerGame:      1.5,
	XGPerGame:         1.5,
	ShotsPerGame:      12,
	StrikerXG:         0.5,
	PlaymakerAssists:  3,
	FormationAttack:   5,
	PressingIntensity: 5,
	PossessionAvg:     50,

	GoalsConceded:    1.5,
	XGConceded:       1.5,
	DefensiveRating:  5,
	SavePct:          0.7,
	TacklesPerGame:   15,
	FormationDefense: 5,

	VenueHome:       1.0,
	VenueAway:       0.85,
	RestDays:        7,
	RestDaysCap:     14,
	TravelAway:      200,
	InjuryPerPlayer: 0.05,
	InjuryCap:       0.3,

	H2HGoalsScored:   1.5,
	H2HGoalsConceded: 1.5,
	H2HWinRate:       0.5,

	Form:     0.5,
	Momentum: 0,

	CoachWinRate:    0.5,
	TacticalMatchup: 5.0,
}

// Lookback windows in days.
const (
	qualityWindowDays = 365
	statsWindowDays   = 180
	h2hWindowDays     = 730
	formShortWindow   = 5
	formLongWindow    = 10
)

// Ratios used to derive attack and defense figures from scorelines when the
// analytics store has no measured value.
const (
	xgPerGoal            = 1.05
	shotsPerGoal         = 8
	strikerShare         = 0.4
	assistedShare        = 0.7
	attackRatingPerGoal  = 3
	maxTacticalScale     = 10
	defenseRatingPerGoal = 3
	baseSaveRate         = 0.8
	saveRatePerGoal      = 0.1
	minSaveRate          = 0.5
)
