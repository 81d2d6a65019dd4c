package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PREDICTOR_"
	envFileVar = "PREDICTOR_CONFIG"
)

// Load builds a Config by layering defaults, an optional YAML file named by
// PREDICTOR_CONFIG, and PREDICTOR_* environment variables, in that order.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// PREDICTOR_POSTGRES_URL -> postgres_url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.PostgresURL == "" {
		return fmt.Errorf("%w: missing required setting: postgres_url", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.WorkerCount <= 0 || c.QueueSize <= 0 || c.BatchSize <= 0 {
		return fmt.Errorf("%w: worker_count, queue_size and batch_size must be positive", ErrInvalidConfig)
	}
	if c.HoldoutFraction < 0 || c.HoldoutFraction > 0.5 {
		return fmt.Errorf("%w: holdout_fraction %.2f outside [0, 0.5]", ErrInvalidConfig, c.HoldoutFraction)
	}
	if c.MinHistoryMatches < 0 {
		return fmt.Errorf("%w: min_history_matches must not be negative", ErrInvalidConfig)
	}
	if c.CorpusSince != "" {
		if _, err := time.Parse(time.DateOnly, c.CorpusSince); err != nil {
			return fmt.Errorf("%w: corpus_since: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
