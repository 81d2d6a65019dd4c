package logic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fixturecast/predictor-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StatsSource is the read-only statistics capability the core consumes.
// Rows come back newest first. A zero since means no lower bound and a zero
// limit means no row cap. Connectivity failures wrap ErrSourceUnavailable.
type StatsSource interface {
	RecentMatches(ctx context.Context, teamID int64, before, since time.Time, limit int) ([]models.TeamMatch, error)
	HeadToHead(ctx context.Context, teamID, opponentID int64, before, since time.Time) ([]models.TeamMatch, error)
	CountFinished(ctx context.Context, teamID int64, before time.Time) (int, error)
	CountUnavailable(ctx context.Context, teamID int64, asOf time.Time) (int, error)
}

// ProfileSource supplies measured team aggregates. Optional.
type ProfileSource interface {
	TeamProfile(ctx context.Context, teamID int64, before time.Time) (models.TeamProfile, error)
}

// CorpusSource lists historical fixtures for training.
type CorpusSource interface {
	FinishedMatches(ctx context.Context, since, until time.Time) ([]models.MatchRecord, error)
}

// Predictor turns a request into a prediction. The learned and rating based
// strategies both implement it.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
}

// PredictionService is the request-level entry point used by handlers.
type PredictionService interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
	ModelStatus() (loaded bool, version string)
}

// PredictionCache stores serialized results for a short TTL.
type PredictionCache interface {
	Get(ctx context.Context, key string) (*models.PredictionResult, bool)
	Set(ctx context.Context, key string, result *models.PredictionResult)
}
