package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "cluster":
		return runCluster(args[1:])
	case "merge":
		return runMerge(args[1:])
	case "refresh-stats":
		return runRefreshStats(args[1:])
	case "reconcile":
		return runReconcile(args[1:])
	case "process", "run-once":
		return runProcess(args[1:])
	case "trending":
		return runTrending(args[1:])
	case "breaking":
		return runBreaking(args[1:])
	case "clusters":
		return runClusters(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "topicwire CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  topicwire <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health         Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  ingest         Insert one article from a validated JSON payload")
	fmt.Fprintln(os.Stderr, "  cluster        Assign the next batch of unassigned articles to topic clusters")
	fmt.Fprintln(os.Stderr, "  merge          Fold together clusters with near-identical centroids")
	fmt.Fprintln(os.Stderr, "  refresh-stats  Recompute per-cluster daily and hourly stats")
	fmt.Fprintln(os.Stderr, "  reconcile      Restore cluster centroids missing from the vector index")
	fmt.Fprintln(os.Stderr, "  process        Run cluster + merge + refresh-stats in sequence")
	fmt.Fprintln(os.Stderr, "  run-once       Alias for process")
	fmt.Fprintln(os.Stderr, "  trending       Rank clusters by velocity in a window")
	fmt.Fprintln(os.Stderr, "  breaking       List clusters spiking over their hourly baseline")
	fmt.Fprintln(os.Stderr, "  clusters       List topic clusters")
	fmt.Fprintln(os.Stderr, "  serve          Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"topicwire <command> -h\" for command-specific flags.")
}
