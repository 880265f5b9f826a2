package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"topicwire/internal/cli"
	"topicwire/internal/db"
	payloadschema "topicwire/schema"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	file := fs.String("file", "-", "Article payload JSON file, or - for stdin")
	timeout := fs.Duration("timeout", 30*time.Second, "Insert timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	raw, err := readPayload(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read payload: %v\n", err)
		return 2
	}

	payload, err := payloadschema.ValidateArticlePayload(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid article payload: %v\n", err)
		return 2
	}

	article, err := articleFromPayload(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid article payload: %v\n", err)
		return 2
	}

	ctx, cancel, _, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	articleID, err := pool.InsertArticle(ctx, article)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to insert article: %v\n", err)
		return 1
	}

	fmt.Printf("ingested article %d\n", articleID)
	return 0
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func articleFromPayload(payload *payloadschema.ArticlePayload) (*db.Article, error) {
	article := &db.Article{
		Title:             payload.Title,
		Summary:           payload.Summary,
		URL:               payload.URL,
		Source:            payload.Source,
		SourceCredibility: "unknown",
		Language:          "und",
	}
	if payload.SourceCredibility != nil && *payload.SourceCredibility != "" {
		article.SourceCredibility = *payload.SourceCredibility
	}
	if payload.Language != nil && *payload.Language != "" {
		article.Language = *payload.Language
	}
	if payload.PublishedAt != nil && *payload.PublishedAt != "" {
		publishedAt, err := time.Parse(time.RFC3339, *payload.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse published_at: %w", err)
		}
		publishedAt = publishedAt.UTC()
		article.PublishedAt = &publishedAt
	}
	return article, nil
}
