package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"topicwire/internal/cli"
	"topicwire/internal/db"
)

func runClusters(args []string) int {
	fs := flag.NewFlagSet("clusters", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	status := fs.String("status", "active", "Filter by status: active, merged, or all")
	clusterID := fs.Int64("id", 0, "Show one cluster with its member articles")
	limit := fs.Int("limit", 50, "Maximum clusters to return")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	statusFilter := strings.TrimSpace(strings.ToLower(*status))
	switch statusFilter {
	case "active", "merged":
	case "all", "":
		statusFilter = ""
	default:
		fmt.Fprintln(os.Stderr, "--status must be active, merged, or all")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	ctx, cancel, _, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	if *clusterID > 0 {
		return showClusterDetail(ctx, pool, *clusterID, *limit, outputFormat)
	}

	clusters, err := pool.ListClusterSummaries(ctx, statusFilter, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cluster query failed: %v\n", err)
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
			c.Status,
			strconv.Itoa(c.ArticleCount),
			truncateForTable(strings.Join(c.Keywords, ","), 40),
			formatUTCTimestamp(c.LastSeen),
		})
	}
	if err := writeTable(
		[]string{"CLUSTER", "LABEL", "STATUS", "ARTICLES", "KEYWORDS", "LAST SEEN"},
		rows,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}

func showClusterDetail(ctx context.Context, pool *db.Pool, clusterID int64, limit int, outputFormat string) int {
	summary, err := pool.GetClusterSummary(ctx, clusterID)
	if err != nil {
		if db.IsNoRows(err) {
			fmt.Fprintf(os.Stderr, "Cluster %d not found\n", clusterID)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Cluster query failed: %v\n", err)
		return 1
	}

	articles, err := pool.ListClusterArticles(ctx, clusterID, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cluster article query failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"cluster":  summary,
			"articles": articles,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("cluster %d: %s (%s, %d articles)\n", summary.ClusterID, summary.Label, summary.Status, summary.ArticleCount)
	if len(summary.Keywords) > 0 {
		fmt.Printf("keywords: %s\n", strings.Join(summary.Keywords, ", "))
	}
	if title := pointerStringOrEmpty(summary.RepresentativeTitle); title != "" {
		fmt.Printf("representative: %s\n", title)
	}
	fmt.Println()

	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, []string{
			strconv.FormatInt(a.ArticleID, 10),
			truncateForTable(a.Title, 70),
			a.Source,
			strconv.FormatFloat(a.Similarity, 'f', 3, 64),
			formatUTCTimestampPtr(a.PublishedAt),
		})
	}
	if err := writeTable(
		[]string{"ARTICLE", "TITLE", "SOURCE", "SIMILARITY", "PUBLISHED"},
		rows,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
