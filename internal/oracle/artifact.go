package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fixturecast/predictor-api/internal/models"
)

// Artifact is the versioned bundle written by the trainer: scaler and
// regression parameters plus the holdout metrics of the run.
type Artifact struct {
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	FeatureNames []string  `json:"feature_names"`
	Scaler       Scaler    `json:"scaler"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
	Lambda       float64   `json:"lambda"`
	SampleCount  int       `json:"sample_count"`
	Metrics      *Metrics  `json:"metrics,omitempty"`
}

// Validate checks the artifact against the feature layout compiled into this binary.
func (a *Artifact) Validate() error {
	if a.Version == "" {
		return errors.New("artifact has no version")
	}
	if len(a.FeatureNames) != models.FeatureCount {
		return fmt.Errorf("artifact has %d features, want %d", len(a.FeatureNames), models.FeatureCount)
	}
	for i, name := range a.FeatureNames {
		if name != models.FeatureNames[i] {
			return fmt.Errorf("artifact feature %d is %q, want %q", i, name, models.FeatureNames[i])
		}
	}
	if len(a.Weights) != models.FeatureCount || a.Scaler.width() != models.FeatureCount || len(a.Scaler.Std) != models.FeatureCount {
		return errors.New("artifact parameter widths do not match feature count")
	}
	for j, s := range a.Scaler.Std {
		if s == 0 {
			return fmt.Errorf("artifact scaler std for %s is zero", a.FeatureNames[j])
		}
	}
	return nil
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &a, nil
}

// Save writes the artifact atomically via a temp file in the same directory.
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
