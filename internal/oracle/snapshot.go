package oracle

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fixturecast/predictor-api/internal/models"
)

var modelReloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "predictor_model_reloads_total",
	Help: "Model artifact reload attempts, by result",
}, []string{"result"})

// Snapshot is an immutable, loaded model. It is safe for concurrent use.
type Snapshot struct {
	Version  string
	LoadedAt time.Time
	artifact *Artifact
}

// NewSnapshot validates a and wraps it for inference.
func NewSnapshot(a *Artifact) (*Snapshot, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Snapshot{Version: a.Version, LoadedAt: time.Now().UTC(), artifact: a}, nil
}

// PredictGoals applies the stored scaler and linear weights. The result is
// not clamped.
func (s *Snapshot) PredictGoals(v models.FeatureVector) float64 {
	x := s.artifact.Scaler.Transform(v.Values())
	out := s.artifact.Intercept
	for j, w := range s.artifact.Weights {
		out += w * x[j]
	}
	return out
}

// Metrics returns the holdout metrics recorded at training time, if any.
func (s *Snapshot) Metrics() *Metrics {
	return s.artifact.Metrics
}

// Handle owns the active snapshot. Reloads swap the pointer so in-flight
// readers keep the snapshot they started with.
type Handle struct {
	active atomic.Pointer[Snapshot]
	logger *zap.SugaredLogger
}

func NewHandle(logger *zap.SugaredLogger) *Handle {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handle{logger: logger}
}

// Active returns the current snapshot or nil when no model is loaded.
func (h *Handle) Active() *Snapshot {
	return h.active.Load()
}

// Store replaces the active snapshot.
func (h *Handle) Store(s *Snapshot) {
	h.active.Store(s)
}

// Reload loads path and swaps it in. On failure the previous snapshot stays active.
func (h *Handle) Reload(path string) (*Snapshot, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		modelReloads.WithLabelValues("error").Inc()
		h.logger.Errorw("Model reload failed", "path", path, "error", err)
		return nil, err
	}
	s, err := NewSnapshot(a)
	if err != nil {
		modelReloads.WithLabelValues("error").Inc()
		return nil, err
	}
	prev := h.active.Swap(s)

	modelReloads.WithLabelValues("ok").Inc()
	fields := []any{"path", path, "version", s.Version}
	if prev != nil {
		fields = append(fields, "previous_version", prev.Version)
	}
	h.logger.Infow("Model loaded", fields...)
	return s, nil
}
