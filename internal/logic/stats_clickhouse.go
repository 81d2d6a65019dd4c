package logic

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"

	"github.com/fixturecast/predictor-api/internal/models"
)

// AnalyticsProfileSource fills a TeamProfile from per-match analytics in
// ClickHouse and the coach record in Postgres. Either store may be nil.
type AnalyticsProfileSource struct {
	ch driver.Conn
	pg PgPool
}

func NewAnalyticsProfileSource(ch driver.Conn, pg PgPool) *AnalyticsProfileSource {
	return &AnalyticsProfileSource{ch: ch, pg: pg}
}

// TeamProfile returns whatever could be measured. A non-nil error may come
// with a partially filled profile; callers should still use the filled fields.
func (s *AnalyticsProfileSource) TeamProfile(ctx context.Context, teamID int64, before time.Time) (profile models.TeamProfile, err error) {
	since := before.AddDate(0, 0, -statsWindowDays)
	var errs []error

	if s.ch != nil {
		if e := s.fillTactics(ctx, teamID, before, since, &profile); e != nil {
			errs = append(errs, e)
		}
		if e := s.fillPlayerShares(ctx, teamID, before, since, &profile); e != nil {
			errs = append(errs, e)
		}
	}
	if s.pg != nil {
		if e := s.fillCoach(ctx, teamID, before, &profile); e != nil {
			errs = append(errs, e)
		}
	}
	return profile, errors.Join(errs...)
}

func (s *AnalyticsProfileSource) fillTactics(ctx context.Context, teamID int64, before, since time.Time, p *models.TeamProfile) error {
	var (
		games                                         uint64
		xg, shots, possession, pressing, tackles, xga float64
		saveRate                                      *float64
	)
	err := s.ch.QueryRow(ctx, `
		SELECT
			count() AS games,
			avg(xg) AS xg,
			avg(shots) AS shots,
			avg(possession) AS possession,
			avg(pressing) AS pressing,
			avg(tackles) AS tackles,
			avg(xg_against) AS xg_against,
			sum(saves) / nullIf(sum(shots_on_target_against), 0) AS save_rate
		FROM team_match_stats
		WHERE team_id = ? AND match_date < ? AND match_date > ?
	`, teamID, before, since).Scan(&games, &xg, &shots, &possession, &pressing, &tackles, &xga, &saveRate)
	if err != nil {
		return classifySourceErr("team tactics query", err)
	}
	if games == 0 {
		return nil
	}

	p.XGPerGame = finite(xg)
	p.ShotsPerGame = finite(shots)
	p.PossessionAvg = finite(possession)
	p.PressingIntensity = finite(pressing)
	p.TacklesPerGame = finite(tackles)
	p.XGConcededPerGame = finite(xga)
	if saveRate != nil {
		p.SavePct = finite(*saveRate)
	}
	return nil
}

func (s *AnalyticsProfileSource) fillPlayerShares(ctx context.Context, teamID int64, before, since time.Time, p *models.TeamProfile) error {
	var (
		games   uint64
		assists float64
	)
	err := s.ch.QueryRow(ctx, `
		SELECT uniqExact(match_id) AS games, toFloat64(sum(assists)) AS assists
		FROM player_match_stats
		WHERE team_id = ? AND match_date < ? AND match_date > ?
	`, teamID, before, since).Scan(&games, &assists)
	if err != nil {
		return classifySourceErr("player assists query", err)
	}
	if games == 0 {
		return nil
	}
	p.AssistsPerGame = finite(assists / float64(games))

	rows, err := s.ch.Query(ctx, `
		SELECT player_id, sum(xg) AS total_xg
		FROM player_match_stats
		WHERE team_id = ? AND match_date < ? AND match_date > ?
		GROUP BY player_id
		ORDER BY total_xg DESC
		LIMIT 1
	`, teamID, before, since)
	if err != nil {
		return classifySourceErr("top scorer query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			playerID int64
			totalXG  float64
		)
		if err := rows.Scan(&playerID, &totalXG); err != nil {
			return classifySourceErr("top scorer scan", err)
		}
		p.TopScorerXG = finite(totalXG / float64(games))
	}
	if err := rows.Err(); err != nil {
		return classifySourceErr("top scorer rows", err)
	}
	return nil
}

func (s *AnalyticsProfileSource) fillCoach(ctx context.Context, teamID int64, before time.Time, p *models.TeamProfile) error {
	var rate *float64
	err := s.pg.QueryRow(ctx, `
		SELECT tc.wins::float8 / NULLIF(tc.matches_managed, 0)::float8
		FROM team_coaches tc
		WHERE tc.team_id = $1 AND tc.season = $2
		LIMIT 1
	`, teamID, strconv.Itoa(before.Year())).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return classifySourceErr("coach query", err)
	}
	if rate != nil {
		p.CoachWinRate = finite(*rate)
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
