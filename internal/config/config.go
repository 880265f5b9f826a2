package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime settings read from the environment.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBMinConns int32 `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxConns int32 `envconfig:"DB_MAX_CONNS" default:"10"`

	SimilarityThreshold     float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.82"`
	HighSimilarityThreshold float64 `envconfig:"HIGH_SIMILARITY_THRESHOLD" default:"0.90"`
	MergeThreshold          float64 `envconfig:"MERGE_THRESHOLD" default:"0.80"`
	NearDuplicateThreshold  float64 `envconfig:"NEAR_DUPLICATE_THRESHOLD" default:"0.85"`
	SpikeThreshold          float64 `envconfig:"SPIKE_THRESHOLD" default:"2.0"`

	BatchLimit   int `envconfig:"BATCH_LIMIT" default:"500"`
	SubBatchSize int `envconfig:"SUB_BATCH_SIZE" default:"50"`

	ServerHost string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ServerPort int    `envconfig:"SERVER_PORT" default:"8080"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the loaded values are internally consistent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0, got %d", c.DBMinConns)
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1, got %d", c.DBMaxConns)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	for _, t := range []struct {
		name  string
		value float64
	}{
		{"SIMILARITY_THRESHOLD", c.SimilarityThreshold},
		{"HIGH_SIMILARITY_THRESHOLD", c.HighSimilarityThreshold},
		{"MERGE_THRESHOLD", c.MergeThreshold},
		{"NEAR_DUPLICATE_THRESHOLD", c.NearDuplicateThreshold},
	} {
		if t.value <= 0 || t.value > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %g", t.name, t.value)
		}
	}
	if c.HighSimilarityThreshold < c.SimilarityThreshold {
		return fmt.Errorf("HIGH_SIMILARITY_THRESHOLD (%g) must be >= SIMILARITY_THRESHOLD (%g)",
			c.HighSimilarityThreshold, c.SimilarityThreshold)
	}
	if c.SpikeThreshold <= 1 {
		return fmt.Errorf("SPIKE_THRESHOLD must be > 1, got %g", c.SpikeThreshold)
	}

	if c.BatchLimit < 1 {
		return fmt.Errorf("BATCH_LIMIT must be >= 1, got %d", c.BatchLimit)
	}
	if c.SubBatchSize < 1 {
		return fmt.Errorf("SUB_BATCH_SIZE must be >= 1, got %d", c.SubBatchSize)
	}
	if c.SubBatchSize > c.BatchLimit {
		return fmt.Errorf("SUB_BATCH_SIZE (%d) must not exceed BATCH_LIMIT (%d)", c.SubBatchSize, c.BatchLimit)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be in [1, 65535], got %d", c.ServerPort)
	}
	return nil
}

// ServerAddr returns the host:port pair the HTTP server binds to.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
