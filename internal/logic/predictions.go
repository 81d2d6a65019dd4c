package logic

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fixturecast/predictor-api/internal/models"
	"github.com/fixturecast/predictor-api/internal/oracle"
)

// ModelHandle exposes the active scoring model snapshot. Nil means no model.
type ModelHandle interface {
	Active() *oracle.Snapshot
}

// LearnedPredictor derives both feature vectors, scores them with the active
// model and resolves the outcome. Competitor A is at its own venue.
type LearnedPredictor struct {
	deriver  Deriver
	model    ModelHandle
	resolver *OutcomeResolver
}

func NewLearnedPredictor(deriver Deriver, model ModelHandle, resolver *OutcomeResolver) *LearnedPredictor {
	return &LearnedPredictor{deriver: deriver, model: model, resolver: resolver}
}

func (p *LearnedPredictor) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	snap := p.model.Active()
	if snap == nil {
		return nil, ErrModelNotLoaded
	}

	var fa, fb models.FeatureVector
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fa, err = p.deriver.Derive(gctx, req.CompetitorAID, req.CompetitorBID, req.AsOf, true)
		return err
	})
	g.Go(func() (err error) {
		fb, err = p.deriver.Derive(gctx, req.CompetitorBID, req.CompetitorAID, req.AsOf, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := p.resolver.Resolve(ResolveInput{
		GoalsA:    math.Max(0, snap.PredictGoals(fa)),
		GoalsB:    math.Max(0, snap.PredictGoals(fb)),
		NameA:     req.CompetitorAName,
		NameB:     req.CompetitorBName,
		FeaturesA: &fa,
		FeaturesB: &fb,
	})
	res.ModelVersion = snap.Version
	return res, nil
}

// ServiceConfig wires the prediction service. Cache is optional.
type ServiceConfig struct {
	Gate       *SufficiencyGate
	Learned    Predictor
	Rating     Predictor
	NoArtifact Predictor
	Model      ModelHandle
	Cache      PredictionCache
	Logger     *zap.SugaredLogger
}

type predictionService struct {
	gate       *SufficiencyGate
	learned    Predictor
	rating     Predictor
	noArtifact Predictor
	model      ModelHandle
	cache      PredictionCache
	logger     *zap.SugaredLogger
}

// NewPredictionService routes each request to the learned or rating strategy.
func NewPredictionService(cfg ServiceConfig) PredictionService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &predictionService{
		gate:       cfg.Gate,
		learned:    cfg.Learned,
		rating:     cfg.Rating,
		noArtifact: cfg.NoArtifact,
		model:      cfg.Model,
		cache:      cfg.Cache,
		logger:     cfg.Logger,
	}
}

func (s *predictionService) ModelStatus() (bool, string) {
	if snap := s.model.Active(); snap != nil {
		return true, snap.Version
	}
	return false, NoArtifactModelVersion
}

func (s *predictionService) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	_, version := s.ModelStatus()
	key := cacheKey(version, req)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			cacheHits.Inc()
			cached.RequestID = uuid.NewString()
			return cached, nil
		}
	}

	start := time.Now()
	path, predictor, err := s.route(ctx, req)
	if err != nil {
		return nil, err
	}

	res, err := predictor.Predict(ctx, req)
	if err != nil {
		s.logger.Warnw("Prediction failed",
			"path", path,
			"competitor_a", req.CompetitorAID,
			"competitor_b", req.CompetitorBID,
			"error", err,
		)
		return nil, err
	}
	res.RequestID = uuid.NewString()

	predictionsTotal.WithLabelValues(path).Inc()
	predictionDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	s.logger.Debugw("Prediction served",
		"path", path,
		"model_version", res.ModelVersion,
		"outcome", res.PredictedLabel,
		"confidence", res.Confidence,
	)

	if s.cache != nil {
		s.cache.Set(ctx, key, res)
	}
	return res, nil
}

func (s *predictionService) route(ctx context.Context, req models.PredictionRequest) (string, Predictor, error) {
	if s.model.Active() == nil {
		return pathNoArtifact, s.noArtifact, nil
	}
	fallback, err := s.gate.UseFallback(ctx, req.CompetitorAID, req.CompetitorBID, req.AsOf)
	if err != nil {
		return "", nil, err
	}
	if fallback {
		return pathFallback, s.rating, nil
	}
	return pathLearned, s.learned, nil
}

// normalizeRequest validates ids and resolves the as-of date, defaulting to now.
func normalizeRequest(req models.PredictionRequest) (models.PredictionRequest, error) {
	if req.CompetitorAID <= 0 || req.CompetitorBID <= 0 {
		return req, fmt.Errorf("%w: competitor ids must be positive", ErrInvalidRequest)
	}
	if req.CompetitorAID == req.CompetitorBID {
		return req, fmt.Errorf("%w: competitors must differ", ErrInvalidRequest)
	}
	if req.AsOf.IsZero() {
		if req.AsOfDate == "" {
			req.AsOf = time.Now().UTC()
		} else {
			t, err := time.Parse(time.DateOnly, req.AsOfDate)
			if err != nil {
				return req, fmt.Errorf("%w: as_of_date: %v", ErrInvalidRequest, err)
			}
			req.AsOf = t
		}
	}
	return req, nil
}

func cacheKey(version string, req models.PredictionRequest) string {
	return fmt.Sprintf("prediction:%s:%d:%d:%s:%s:%s",
		version, req.CompetitorAID, req.CompetitorBID, req.AsOf.Format(time.DateOnly),
		req.CompetitorAName, req.CompetitorBName)
}
