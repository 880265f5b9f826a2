package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"topicwire/internal/cli"
)

func runCluster(args []string) int {
	fs := flag.NewFlagSet("cluster", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall batch timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel, cfg, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	svc, logger, err := buildClusterService(cfg, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	assigned, err := svc.ProcessBatch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("cluster batch failed")
		fmt.Fprintf(os.Stderr, "Cluster batch failed: %v\n", err)
		return 1
	}

	fmt.Printf("assigned %d articles\n", assigned)
	return 0
}
