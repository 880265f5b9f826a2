package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"topicwire/internal/cli"
)

func runReconcile(args []string) int {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall sweep timeout")

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

	restored, err := svc.Reconcile(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("centroid reconciliation failed")
		fmt.Fprintf(os.Stderr, "Centroid reconciliation failed: %v\n", err)
		return 1
	}

	fmt.Printf("restored %d centroids\n", restored)
	return 0
}
