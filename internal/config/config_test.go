package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:             "postgres://localhost:5432/topicwire",
		Environment:             "local",
		LogLevel:                "info",
		DBMinConns:              2,
		DBMaxConns:              10,
		SimilarityThreshold:     0.82,
		HighSimilarityThreshold: 0.90,
		MergeThreshold:          0.80,
		NearDuplicateThreshold:  0.85,
		SpikeThreshold:          2.0,
		BatchLimit:              500,
		SubBatchSize:            50,
		ServerHost:              "0.0.0.0",
		ServerPort:              8080,
	}
}

func TestValidateDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "empty database url",
			mutate:  func(c *Config) { c.DatabaseURL = "  " },
			wantSub: "DATABASE_URL",
		},
		{
			name:    "min conns above max",
			mutate:  func(c *Config) { c.DBMinConns = 20 },
			wantSub: "DB_MIN_CONNS",
		},
		{
			name:    "similarity out of range",
			mutate:  func(c *Config) { c.SimilarityThreshold = 1.5 },
			wantSub: "SIMILARITY_THRESHOLD",
		},
		{
			name: "high threshold below similarity",
			mutate: func(c *Config) {
				c.HighSimilarityThreshold = 0.70
			},
			wantSub: "HIGH_SIMILARITY_THRESHOLD",
		},
		{
			name:    "spike threshold too low",
			mutate:  func(c *Config) { c.SpikeThreshold = 1.0 },
			wantSub: "SPIKE_THRESHOLD",
		},
		{
			name:    "sub batch above batch limit",
			mutate:  func(c *Config) { c.SubBatchSize = 1000 },
			wantSub: "SUB_BATCH_SIZE",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.ServerPort = 0 },
			wantSub: "SERVER_PORT",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if got := cfg.ServerAddr(); got != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", got)
	}
}
