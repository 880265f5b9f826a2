package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"topicwire/internal/cli"
	"topicwire/internal/trending"
)

func runTrending(args []string) int {
	fs := flag.NewFlagSet("trending", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	windowRaw := fs.String("window", "1d", "Trending window: 1d, 1w, or 1m")
	limit := fs.Int("limit", 20, "Maximum clusters to return")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	window, err := trending.ParseWindow(*windowRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
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

	clusters, err := svc.Trending(ctx, window, *limit)
	if err != nil {
		logger.Error().Err(err).Msg("trending query failed")
		fmt.Fprintf(os.Stderr, "Trending query failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(clusters); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(clusters))
	for _, c := range clusters {
		rows = append(rows, []string{
			strconv.FormatInt(c.ClusterID, 10),
			truncateForTable(c.Label, 60),
			strconv.FormatFloat(c.Score, 'f', 2, 64),
			strconv.FormatFloat(c.Velocity, 'f', 2, 64),
			strconv.Itoa(c.WindowCount),
			strconv.Itoa(c.DistinctSources),
			formatUTCTimestamp(c.LastSeen),
		})
	}
	if err := writeTable(
		[]string{"CLUSTER", "LABEL", "SCORE", "VELOCITY", "WINDOW", "SOURCES", "LAST SEEN"},
		rows,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
