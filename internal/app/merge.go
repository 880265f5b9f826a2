package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"topicwire/internal/cli"
)

func runMerge(args []string) int {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall merge pass timeout")

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

	merged, err := svc.MergeClusters(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("merge pass failed")
		fmt.Fprintf(os.Stderr, "Merge pass failed: %v\n", err)
		return 1
	}

	fmt.Printf("merged %d clusters\n", merged)
	return 0
}
