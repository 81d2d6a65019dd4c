package logic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fixturecast/predictor-api/internal/models"
)

// FeatureDeriver builds the 31-field vector for one competitor attacking
// another. Every read is independent and falls back to its default on failure.
type FeatureDeriver struct {
	stats       StatsSource
	profiles    ProfileSource
	logger      *zap.SugaredLogger
	readTimeout time.Duration
}

// NewFeatureDeriver wires a deriver. profiles may be nil, in which case all
// measured values come from scorelines or defaults. A zero readTimeout leaves
// reads bounded only by the caller's context.
func NewFeatureDeriver(stats StatsSource, profiles ProfileSource, logger *zap.SugaredLogger, readTimeout time.Duration) *FeatureDeriver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FeatureDeriver{
		stats:       stats,
		profiles:    profiles,
		logger:      logger,
		readTimeout: readTimeout,
	}
}

type h2hSummary struct {
	GoalsScored   float64
	GoalsConceded float64
	WinRate       float64
}

// statRead is one slot of the fan-out. err stays nil when the read succeeded.
type statRead struct {
	field string
	err   error
}

// Derive returns the feature vector for team playing opponent, using only
// matches strictly before asOf. It fails only when the statistics source is
// entirely unreachable or ctx is done.
func (d *FeatureDeriver) Derive(ctx context.Context, teamID, opponentID int64, asOf time.Time, atVenue bool) (models.FeatureVector, error) {
	team := models.TeamStatsSnapshot{TeamID: teamID, AsOf: asOf}
	opp := models.TeamStatsSnapshot{TeamID: opponentID, AsOf: asOf}
	h2h := h2hSummary{
		GoalsScored:   FeatureDefaults.H2HGoalsScored,
		GoalsConceded: FeatureDefaults.H2HGoalsConceded,
		WinRate:       FeatureDefaults.H2HWinRate,
	}
	var teamProfile, oppProfile models.TeamProfile

	reads := []*statRead{
		{field: "team_quality"},
		{field: "opponent_quality"},
		{field: "team_attack"},
		{field: "opponent_defense"},
		{field: "rest_days"},
		{field: "injuries"},
		{field: "head_to_head"},
		{field: "team_form"},
		{field: "opponent_form"},
	}

	g, gctx := errgroup.WithContext(ctx)
	run := func(r *statRead, fn func(ctx context.Context) error) {
		g.Go(func() error {
			rctx, cancel := d.readContext(gctx)
			defer cancel()
			r.err = fn(rctx)
			return nil
		})
	}

	run(reads[0], func(ctx context.Context) error {
		q, err := d.quality(ctx, teamID, asOf)
		team.Quality = q
		return err
	})
	run(reads[1], func(ctx context.Context) error {
		q, err := d.quality(ctx, opponentID, asOf)
		opp.Quality = q
		return err
	})
	run(reads[2], func(ctx context.Context) error {
		gpg, err := d.perGame(ctx, teamID, asOf, true)
		team.GoalsPerGame = gpg
		return err
	})
	run(reads[3], func(ctx context.Context) error {
		cpg, err := d.perGame(ctx, opponentID, asOf, false)
		opp.GoalsConcededPerGame = cpg
		return err
	})
	run(reads[4], func(ctx context.Context) error {
		rest, err := d.restDays(ctx, teamID, asOf)
		team.RestDays = rest
		return err
	})
	run(reads[5], func(ctx context.Context) error {
		n, err := d.stats.CountUnavailable(ctx, teamID, asOf)
		if err != nil {
			return err
		}
		team.Unavailable = n
		return nil
	})
	run(reads[6], func(ctx context.Context) error {
		s, err := d.headToHead(ctx, teamID, opponentID, asOf)
		if err != nil {
			return err
		}
		h2h = s
		return nil
	})
	run(reads[7], func(ctx context.Context) error {
		f5, f10, err := d.form(ctx, teamID, asOf, formLongWindow)
		team.FormLast5, team.FormLast10 = f5, f10
		return err
	})
	run(reads[8], func(ctx context.Context) error {
		f5, _, err := d.form(ctx, opponentID, asOf, formShortWindow)
		opp.FormLast5 = f5
		return err
	})

	if d.profiles != nil {
		var teamProfileErr, oppProfileErr error
		g.Go(func() error {
			rctx, cancel := d.readContext(gctx)
			defer cancel()
			teamProfile, teamProfileErr = d.profiles.TeamProfile(rctx, teamID, asOf)
			return nil
		})
		g.Go(func() error {
			rctx, cancel := d.readContext(gctx)
			defer cancel()
			oppProfile, oppProfileErr = d.profiles.TeamProfile(rctx, opponentID, asOf)
			return nil
		})
		defer func() {
			d.recordFailure("team_profile", teamID, teamProfileErr)
			d.recordFailure("opponent_profile", opponentID, oppProfileErr)
		}()
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return models.FeatureVector{}, fmt.Errorf("derive features: %w: %v", ErrSourceUnavailable, err)
	}

	unreachable := 0
	for _, r := range reads {
		if r.err == nil {
			continue
		}
		if errors.Is(r.err, ErrSourceUnavailable) {
			unreachable++
		}
		d.recordFailure(r.field, teamID, r.err)
	}
	if unreachable == len(reads) {
		return models.FeatureVector{}, fmt.Errorf("derive features for team %d: %w", teamID, reads[0].err)
	}

	fillAttack(&team, teamProfile)
	fillDefense(&opp, oppProfile)
	team.CoachWinRate = pick(teamProfile.CoachWinRate, FeatureDefaults.CoachWinRate)

	return assembleFeatures(team, opp, h2h, atVenue), nil
}

func (d *FeatureDeriver) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.readTimeout > 0 {
		return context.WithTimeout(ctx, d.readTimeout)
	}
	return context.WithCancel(ctx)
}

func (d *FeatureDeriver) recordFailure(field string, teamID int64, err error) {
	if err == nil {
		return
	}
	statReadFailures.WithLabelValues(field).Inc()
	d.logger.Debugw("Statistic unavailable, using default", "field", field, "team_id", teamID, "error", err)
}

// quality blends win rate with goal difference over the trailing year.
func (d *FeatureDeriver) quality(ctx context.Context, teamID int64, asOf time.Time) (float64, error) {
	matches, err := d.stats.RecentMatches(ctx, teamID, asOf, asOf.AddDate(0, 0, -qualityWindowDays), 0)
	if err != nil {
		return FeatureDefaults.Quality, err
	}
	return QualityRating(matches), nil
}

// QualityRating scores a run of matches on a 0-100 scale. No matches yields
// the default.
func QualityRating(matches []models.TeamMatch) float64 {
	if len(matches) == 0 {
		return FeatureDefaults.Quality
	}
	var wins, scored, conceded float64
	for _, m := range matches {
		if m.Result == models.ResultWin {
			wins++
		}
		scored += float64(m.GoalsFor)
		conceded += float64(m.GoalsAgainst)
	}
	n := float64(len(matches))
	winRate := wins / n
	goalScore := clamp(50+10*(scored/n-conceded/n), 0, 100)
	return 0.6*winRate*100 + 0.4*goalScore
}

// perGame averages goals scored (or conceded) by teamID over the stats
// window. NaN means there were no qualifying matches.
func (d *FeatureDeriver) perGame(ctx context.Context, teamID int64, asOf time.Time, scored bool) (float64, error) {
	matches, err := d.stats.RecentMatches(ctx, teamID, asOf, asOf.AddDate(0, 0, -statsWindowDays), 0)
	if err != nil || len(matches) == 0 {
		return math.NaN(), err
	}
	var total float64
	for _, m := range matches {
		if scored {
			total += float64(m.GoalsFor)
		} else {
			total += float64(m.GoalsAgainst)
		}
	}
	return total / float64(len(matches)), nil
}

func (d *FeatureDeriver) restDays(ctx context.Context, teamID int64, asOf time.Time) (float64, error) {
	matches, err := d.stats.RecentMatches(ctx, teamID, asOf, time.Time{}, 1)
	if err != nil {
		return FeatureDefaults.RestDays, err
	}
	if len(matches) == 0 {
		return FeatureDefaults.RestDays, nil
	}
	return RestDays(matches[0].Date, asOf), nil
}

// RestDays counts whole days between the last match and asOf, capped.
func RestDays(last, asOf time.Time) float64 {
	days := math.Floor(asOf.Sub(last).Hours() / 24)
	return clamp(days, 0, FeatureDefaults.RestDaysCap)
}

func (d *FeatureDeriver) headToHead(ctx context.Context, teamID, opponentID int64, asOf time.Time) (h2hSummary, error) {
	matches, err := d.stats.HeadToHead(ctx, teamID, opponentID, asOf, asOf.AddDate(0, 0, -h2hWindowDays))
	if err != nil {
		return h2hSummary{}, err
	}
	if len(matches) == 0 {
		return h2hSummary{
			GoalsScored:   FeatureDefaults.H2HGoalsScored,
			GoalsConceded: FeatureDefaults.H2HGoalsConceded,
			WinRate:       FeatureDefaults.H2HWinRate,
		}, nil
	}
	var s h2hSummary
	for _, m := range matches {
		s.GoalsScored += float64(m.GoalsFor)
		s.GoalsConceded += float64(m.GoalsAgainst)
		if m.Result == models.ResultWin {
			s.WinRate++
		}
	}
	n := float64(len(matches))
	s.GoalsScored /= n
	s.GoalsConceded /= n
	s.WinRate /= n
	return s, nil
}

// form returns the normalized points score over the last five and the last
// limit matches.
func (d *FeatureDeriver) form(ctx context.Context, teamID int64, asOf time.Time, limit int) (float64, float64, error) {
	matches, err := d.stats.RecentMatches(ctx, teamID, asOf, time.Time{}, limit)
	if err != nil {
		return FeatureDefaults.Form, FeatureDefaults.Form, err
	}
	short := matches
	if len(short) > formShortWindow {
		short = short[:formShortWindow]
	}
	return FormScore(short), FormScore(matches), nil
}

// FormScore normalizes points earned to [0,1]. No matches yields the default.
func FormScore(matches []models.TeamMatch) float64 {
	if len(matches) == 0 {
		return FeatureDefaults.Form
	}
	points := 0
	for _, m := range matches {
		points += m.Result.Points()
	}
	return float64(points) / float64(3*len(matches))
}

// fillAttack completes the attacking half of the snapshot. Measured values
// win over values derived from goals, which win over defaults.
func fillAttack(s *models.TeamStatsSnapshot, p models.TeamProfile) {
	goals := s.GoalsPerGame
	known := !math.IsNaN(goals)
	if !known {
		goals = FeatureDefaults.GoalsPerGame
	}
	s.GoalsPerGame = goals

	derive := func(measured *float64, ratio, fallback float64) float64 {
		if measured != nil {
			return *measured
		}
		if known {
			return goals * ratio
		}
		return fallback
	}
	s.XGPerGame = derive(p.XGPerGame, xgPerGoal, FeatureDefaults.XGPerGame)
	s.ShotsPerGame = derive(p.ShotsPerGame, shotsPerGoal, FeatureDefaults.ShotsPerGame)
	s.StrikerXG = derive(p.TopScorerXG, strikerShare, FeatureDefaults.StrikerXG)
	s.AssistsPerGame = derive(p.AssistsPerGame, assistedShare, FeatureDefaults.PlaymakerAssists)
	s.PossessionAvg = pick(p.PossessionAvg, FeatureDefaults.PossessionAvg)
	s.PressingIntensity = pick(p.PressingIntensity, FeatureDefaults.PressingIntensity)

	s.FormationAttack = FeatureDefaults.FormationAttack
	if known {
		s.FormationAttack = math.Min(maxTacticalScale, goals*attackRatingPerGoal)
	}
}

// fillDefense completes the defending half of the snapshot.
func fillDefense(s *models.TeamStatsSnapshot, p models.TeamProfile) {
	conceded := s.GoalsConcededPerGame
	known := !math.IsNaN(conceded)
	if !known {
		conceded = FeatureDefaults.GoalsConceded
	}
	s.GoalsConcededPerGame = conceded

	s.XGConcededPerGame = FeatureDefaults.XGConceded
	s.DefensiveRating = FeatureDefaults.DefensiveRating
	s.SavePct = FeatureDefaults.SavePct
	if known {
		s.XGConcededPerGame = conceded * xgPerGoal
		s.DefensiveRating = math.Max(0, maxTacticalScale-conceded*defenseRatingPerGoal)
		s.SavePct = math.Max(minSaveRate, baseSaveRate-conceded*saveRatePerGoal)
	}
	if p.XGConcededPerGame != nil {
		s.XGConcededPerGame = *p.XGConcededPerGame
	}
	if p.SavePct != nil {
		s.SavePct = *p.SavePct
	}
	s.TacklesPerGame = pick(p.TacklesPerGame, FeatureDefaults.TacklesPerGame)
	s.FormationDefense = FeatureDefaults.FormationDefense
}

func assembleFeatures(team, opp models.TeamStatsSnapshot, h2h h2hSummary, atVenue bool) models.FeatureVector {
	v := models.FeatureVector{
		TeamQualityRating:     team.Quality,
		OpponentQualityRating: opp.Quality,

		TeamXGPerGame:         team.XGPerGame,
		TeamGoalsPerGame:      team.GoalsPerGame,
		TeamShotsPerGame:      team.ShotsPerGame,
		TeamStrikerXG:         team.StrikerXG,
		TeamPlaymakerAssists:  team.AssistsPerGame,
		TeamFormationAttack:   team.FormationAttack,
		TeamPressingIntensity: team.PressingIntensity,
		TeamPossessionAvg:     team.PossessionAvg,

		OpponentXGConceded:        opp.XGConcededPerGame,
		OpponentGoalsConceded:     opp.GoalsConcededPerGame,
		OpponentDefensiveRating:   opp.DefensiveRating,
		OpponentGoalkeeperSavePct: opp.SavePct,
		OpponentTacklesPerGame:    opp.TacklesPerGame,
		OpponentFormationDefense:  opp.FormationDefense,

		VenueFactor:    FeatureDefaults.VenueAway,
		RestDays:       team.RestDays,
		TravelDistance: FeatureDefaults.TravelAway,
		InjuryImpact:   -math.Min(FeatureDefaults.InjuryCap, FeatureDefaults.InjuryPerPlayer*float64(team.Unavailable)),

		H2HGoalsScoredAvg:   h2h.GoalsScored,
		H2HGoalsConcededAvg: h2h.GoalsConceded,
		H2HWinRate:          h2h.WinRate,

		TeamFormLast5:     team.FormLast5,
		TeamFormLast10:    team.FormLast10,
		TeamMomentum:      team.FormLast5 - team.FormLast10,
		OpponentFormLast5: opp.FormLast5,

		CoachWinRate:         team.CoachWinRate,
		TacticalMatchupScore: FeatureDefaults.TacticalMatchup,
	}
	if atVenue {
		v.VenueFactor = FeatureDefaults.VenueHome
		v.TravelDistance = 0
	}
	v.QualityDifference = v.TeamQualityRating - v.OpponentQualityRating
	v.AttackVsDefense = v.TeamXGPerGame - v.OpponentXGConceded
	return v
}

func pick(measured *float64, fallback float64) float64 {
	if measured != nil {
		return *measured
	}
	return fallback
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
