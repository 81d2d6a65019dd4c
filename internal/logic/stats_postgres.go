package logic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fixturecast/predictor-api/internal/models"
)

// PostgresStatsSource reads match, availability and corpus data from the
// relational store.
type PostgresStatsSource struct {
	pg PgPool
}

func NewPostgresStatsSource(pg PgPool) *PostgresStatsSource {
	return &PostgresStatsSource{pg: pg}
}

const teamMatchColumns = `
		m.id,
		m.utc_date,
		CASE WHEN m.home_team_id = $1 THEN m.away_team_id ELSE m.home_team_id END AS opponent_id,
		m.home_team_id = $1 AS at_home,
		CASE WHEN m.home_team_id = $1 THEN m.home_score ELSE m.away_score END AS goals_for,
		CASE WHEN m.home_team_id = $1 THEN m.away_score ELSE m.home_score END AS goals_against`

func (s *PostgresStatsSource) RecentMatches(ctx context.Context, teamID int64, before, since time.Time, limit int) ([]models.TeamMatch, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT`+teamMatchColumns+`
		FROM matches m
		WHERE (m.home_team_id = $1 OR m.away_team_id = $1)
		  AND m.status = 'FINISHED'
		  AND m.home_score IS NOT NULL
		  AND m.away_score IS NOT NULL
		  AND m.utc_date < $2
		  AND ($3::timestamptz IS NULL OR m.utc_date > $3)
		ORDER BY m.utc_date DESC
		LIMIT $4
	`, teamID, before, nullableTime(since), nullableLimit(limit))
	if err != nil {
		return nil, classifySourceErr("recent matches query", err)
	}
	return scanTeamMatches(rows, "recent matches")
}

func (s *PostgresStatsSource) HeadToHead(ctx context.Context, teamID, opponentID int64, before, since time.Time) ([]models.TeamMatch, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT`+teamMatchColumns+`
		FROM matches m
		WHERE ((m.home_team_id = $1 AND m.away_team_id = $2)
		    OR (m.away_team_id = $1 AND m.home_team_id = $2))
		  AND m.status = 'FINISHED'
		  AND m.home_score IS NOT NULL
		  AND m.away_score IS NOT NULL
		  AND m.utc_date < $3
		  AND ($4::timestamptz IS NULL OR m.utc_date > $4)
		ORDER BY m.utc_date DESC
	`, teamID, opponentID, before, nullableTime(since))
	if err != nil {
		return nil, classifySourceErr("head-to-head query", err)
	}
	return scanTeamMatches(rows, "head-to-head")
}

func (s *PostgresStatsSource) CountFinished(ctx context.Context, teamID int64, before time.Time) (int, error) {
	var count int
	err := s.pg.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM matches m
		WHERE (m.home_team_id = $1 OR m.away_team_id = $1)
		  AND m.status = 'FINISHED'
		  AND m.home_score IS NOT NULL
		  AND m.utc_date < $2
	`, teamID, before).Scan(&count)
	if err != nil {
		return 0, classifySourceErr("finished count query", err)
	}
	return count, nil
}

func (s *PostgresStatsSource) CountUnavailable(ctx context.Context, teamID int64, asOf time.Time) (int, error) {
	var count int
	err := s.pg.QueryRow(ctx, `
		SELECT COUNT(DISTINCT pa.player_id)
		FROM player_availability pa
		JOIN players p ON pa.player_id = p.id
		WHERE p.team_id = $1
		  AND pa.unavailable_from <= $2
		  AND (pa.unavailable_until IS NULL OR pa.unavailable_until >= $2)
		  AND pa.reason IN ('injury', 'suspension')
	`, teamID, asOf).Scan(&count)
	if err != nil {
		return 0, classifySourceErr("unavailable players query", err)
	}
	return count, nil
}

// FinishedMatches returns the training corpus ordered by date.
func (s *PostgresStatsSource) FinishedMatches(ctx context.Context, since, until time.Time) ([]models.MatchRecord, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT m.id, m.utc_date, m.home_team_id, m.away_team_id, m.home_score, m.away_score, m.status
		FROM matches m
		WHERE m.status = 'FINISHED'
		  AND m.home_score IS NOT NULL
		  AND m.away_score IS NOT NULL
		  AND ($1::timestamptz IS NULL OR m.utc_date >= $1)
		  AND ($2::timestamptz IS NULL OR m.utc_date < $2)
		ORDER BY m.utc_date, m.id
	`, nullableTime(since), nullableTime(until))
	if err != nil {
		return nil, classifySourceErr("corpus query", err)
	}
	defer rows.Close()

	var out []models.MatchRecord
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.ID, &m.Date, &m.HomeTeamID, &m.AwayTeamID, &m.HomeScore, &m.AwayScore, &m.Status); err != nil {
			return nil, classifySourceErr("corpus scan", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySourceErr("corpus rows", err)
	}
	return out, nil
}

func scanTeamMatches(rows pgx.Rows, op string) ([]models.TeamMatch, error) {
	defer rows.Close()

	var out []models.TeamMatch
	for rows.Next() {
		var tm models.TeamMatch
		if err := rows.Scan(&tm.MatchID, &tm.Date, &tm.OpponentID, &tm.AtHome, &tm.GoalsFor, &tm.GoalsAgainst); err != nil {
			return nil, classifySourceErr(op+" scan", err)
		}
		tm.Result = models.ResultFor(tm.GoalsFor, tm.GoalsAgainst)
		out = append(out, tm)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySourceErr(op+" rows", err)
	}
	return out, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullableLimit(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
