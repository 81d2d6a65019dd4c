package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fixturecast/predictor-api/internal/logic"
	"github.com/fixturecast/predictor-api/internal/models"
	"github.com/fixturecast/predictor-api/internal/oracle"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 65536

// HistoryStore records and lists served predictions
type HistoryStore interface {
	Record(ctx context.Context, matchID int64, res *models.PredictionResult) (string, error)
	List(ctx context.Context, limit int) ([]models.PredictionHistory, error)
}

// ModelReloader swaps the active scoring model
type ModelReloader interface {
	Reload(path string) (*oracle.Snapshot, error)
}

// ReadyCheck pings one dependency
type ReadyCheck func(ctx context.Context) error

type Config struct {
	Logger         *zap.Logger
	Prediction     logic.PredictionService
	History        HistoryStore
	Model          ModelReloader
	ArtifactPath   string
	AdminTokenHash string
	RequestTimeout time.Duration
	ReadyChecks    map[string]ReadyCheck
}

type Handler struct {
	logger         *zap.SugaredLogger
	validator      *validator.Validate
	prediction     logic.PredictionService
	history        HistoryStore
	model          ModelReloader
	artifactPath   string
	adminTokenHash string
	requestTimeout time.Duration
	readyChecks    map[string]ReadyCheck
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		logger:         cfg.Logger.Sugar(),
		validator:      validator.New(),
		prediction:     cfg.Prediction,
		history:        cfg.History,
		model:          cfg.Model,
		artifactPath:   cfg.ArtifactPath,
		adminTokenHash: cfg.AdminTokenHash,
		requestTimeout: cfg.RequestTimeout,
		readyChecks:    cfg.ReadyChecks,
	}
}
