package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"topicwire/internal/cluster"
	"topicwire/internal/config"
	"topicwire/internal/db"
	"topicwire/internal/index"
	"topicwire/internal/logging"
	"topicwire/internal/trending"
)

// buildClusterService wires the pgvector index and the clustering service
// for the batch-job commands.
func buildClusterService(cfg *config.Config, pool *db.Pool) (*cluster.Service, zerolog.Logger, error) {
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize logger: %w", err)
	}

	idx, err := index.NewPgVector(pool)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize vector index: %w", err)
	}

	svc, err := cluster.NewService(pool, idx, cfg, logger)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize cluster service: %w", err)
	}
	return svc, logger, nil
}

func buildTrendingService(cfg *config.Config, pool *db.Pool) (*trending.Service, zerolog.Logger, error) {
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize logger: %w", err)
	}

	svc, err := trending.NewService(pool, cfg, logger)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize trending service: %w", err)
	}
	return svc, logger, nil
}
