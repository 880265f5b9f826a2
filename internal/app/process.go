package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"topicwire/internal/cli"
)

// runProcess chains the batch jobs the way the external scheduler would:
// assignment, then merge, then stats refresh.
func runProcess(args []string) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Minute, "Overall run timeout")
	skipMerge := fs.Bool("skip-merge", false, "Skip the merge pass")
	skipStats := fs.Bool("skip-stats", false, "Skip the stats refresh")

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

	clusterSvc, logger, err := buildClusterService(cfg, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	trendingSvc, _, err := buildTrendingService(cfg, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	assigned, err := clusterSvc.ProcessBatch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("cluster batch failed")
		fmt.Fprintf(os.Stderr, "Cluster batch failed: %v\n", err)
		return 1
	}
	fmt.Printf("assigned %d articles\n", assigned)

	if !*skipMerge {
		merged, err := clusterSvc.MergeClusters(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("merge pass failed")
			fmt.Fprintf(os.Stderr, "Merge pass failed: %v\n", err)
			return 1
		}
		fmt.Printf("merged %d clusters\n", merged)
	}

	if !*skipStats {
		rows, err := trendingSvc.RefreshStats(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("stats refresh failed")
			fmt.Fprintf(os.Stderr, "Stats refresh failed: %v\n", err)
			return 1
		}
		fmt.Printf("refreshed %d stat rows\n", rows)
	}

	return 0
}
