package config

import (
	"time"
)

type Config struct {
	// Server
	Port     int    `koanf:"port"`
	Env      string `koanf:"env"`
	LogLevel string `koanf:"log_level"`

	// CORS
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Database URLs. ClickHouse and Redis are optional.
	PostgresURL   string `koanf:"postgres_url"`
	ClickHouseURL string `koanf:"clickhouse_url"`
	RedisURL      string `koanf:"redis_url"`

	// Model
	ArtifactPath      string             `koanf:"artifact_path"`
	MinHistoryMatches int                `koanf:"min_history_matches"`
	RatingOverrides   map[string]float64 `koanf:"rating_overrides"`

	// Request handling
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	StatReadTimeout time.Duration `koanf:"stat_read_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`

	// Auth. AdminTokenHash is the hex SHA-256 of the admin token; empty
	// disables admin endpoints.
	AdminTokenHash string `koanf:"admin_token_hash"`

	// Training
	RidgeLambda     float64 `koanf:"ridge_lambda"`
	HoldoutFraction float64 `koanf:"holdout_fraction"`
	CorpusSince     string  `koanf:"corpus_since"`

	// Worker pool
	WorkerCount   int           `koanf:"worker_count"`
	QueueSize     int           `koanf:"queue_size"`
	BatchSize     int           `koanf:"batch_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// New returns the defaults every other layer overrides.
func New() *Config {
	return &Config{
		Port:     8080,
		Env:      "development",
		LogLevel: "info",

		AllowedOrigins: []string{"http://localhost:3000"},

		ArtifactPath:      "models/artifact.json",
		MinHistoryMatches: 5,

		CacheTTL:        10 * time.Minute,
		StatReadTimeout: 2 * time.Second,
		RequestTimeout:  10 * time.Second,

		RidgeLambda:     1.0,
		HoldoutFraction: 0.2,

		WorkerCount:   8,
		QueueSize:     1000,
		BatchSize:     500,
		FlushInterval: 1 * time.Second,
	}
}

// IsDevelopment reports whether verbose development logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
