package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"topicwire/internal/cli"
)

func runRefreshStats(args []string) int {
	fs := flag.NewFlagSet("refresh-stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall refresh timeout")

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

	svc, logger, err := buildTrendingService(cfg, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	rows, err := svc.RefreshStats(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("stats refresh failed")
		fmt.Fprintf(os.Stderr, "Stats refresh failed: %v\n", err)
		return 1
	}

	fmt.Printf("refreshed %d stat rows\n", rows)
	return 0
}
