package db

import (
	"context"
	"fmt"
	"time"
)

// ClusteringArticle is the slice of news.articles the clustering jobs need.
type ClusteringArticle struct {
	ArticleID         int64      `json:"article_id"`
	Title             string     `json:"title"`
	Summary           string     `json:"summary"`
	Source            string     `json:"source"`
	SourceCredibility string     `json:"source_credibility"`
	Language          string     `json:"language"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ClusterArticleItem is used by the clusters CLI command and HTTP API.
type ClusterArticleItem struct {
	ArticleID   int64      `json:"article_id"`
	Title       string     `json:"title"`
	URL         *string    `json:"url,omitempty"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Similarity  float64    `json:"similarity"`
	AssignedAt  time.Time  `json:"assigned_at"`
}

const clusteringArticleColumns = `
	a.article_id,
	a.title,
	a.summary,
	a.source,
	a.source_credibility,
	a.language,
	a.published_at,
	a.created_at`

// Pending articles whose embedding was never stored are excluded: they wait
// for the embedding pipeline instead of occupying batch slots on every run.
const listUnassignedArticlesSQL = `
SELECT` + clusteringArticleColumns + `
FROM news.articles a
WHERE a.cluster_status = 'pending'
  AND EXISTS (
	SELECT 1 FROM news.index_vectors v
	WHERE v.namespace = 'articles'
	  AND v.vector_key = 'article_' || a.article_id
  )
ORDER BY COALESCE(a.published_at, a.created_at) DESC, a.article_id DESC
LIMIT $1
`

// ListUnassignedArticles returns pending articles with a stored embedding,
// most recent first.
func (p *Pool) ListUnassignedArticles(ctx context.Context, limit int) ([]ClusteringArticle, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	rows, err := p.Query(ctx, listUnassignedArticlesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query unassigned articles: %w", err)
	}
	defer rows.Close()

	return scanClusteringArticles(rows, limit)
}

// GetArticlesByID loads the clustering slice for a set of article ids.
func (p *Pool) GetArticlesByID(ctx context.Context, ids []int64) ([]ClusteringArticle, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := `
SELECT` + clusteringArticleColumns + `
FROM news.articles a
WHERE a.article_id = ANY($1)
`

	rows, err := p.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("query articles by id: %w", err)
	}
	defer rows.Close()

	return scanClusteringArticles(rows, len(ids))
}

// MarkArticlesClustered flips cluster_status for the given articles.
func (p *Pool) MarkArticlesClustered(ctx context.Context, tx Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	const q = `
UPDATE news.articles
SET cluster_status = 'clustered',
    updated_at = now()
WHERE article_id = ANY($1)
  AND cluster_status = 'pending'
`

	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, q, ids)
	} else {
		_, err = p.Exec(ctx, q, ids)
	}
	if err != nil {
		return fmt.Errorf("mark articles clustered: %w", err)
	}
	return nil
}

// InsertArticle stores a manually ingested article and returns its id.
func (p *Pool) InsertArticle(ctx context.Context, a *Article) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("article is nil")
	}

	const q = `
INSERT INTO news.articles
	(title, summary, url, source, source_credibility, language, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING article_id
`

	var id int64
	err := p.QueryRow(ctx, q,
		a.Title, a.Summary, a.URL, a.Source, a.SourceCredibility, a.Language, a.PublishedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}
	return id, nil
}

// ListClusterArticles returns the members of a cluster, newest first.
func (p *Pool) ListClusterArticles(ctx context.Context, clusterID int64, limit int) ([]ClusterArticleItem, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
SELECT
	a.article_id,
	a.title,
	a.url,
	a.source,
	a.published_at,
	at.similarity,
	at.assigned_at
FROM news.article_topics at
JOIN news.articles a ON a.article_id = at.article_id
WHERE at.cluster_id = $1
ORDER BY COALESCE(a.published_at, a.created_at) DESC, a.article_id DESC
LIMIT $2
`

	rows, err := p.Query(ctx, q, clusterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query cluster articles: %w", err)
	}
	defer rows.Close()

	items := make([]ClusterArticleItem, 0, limit)
	for rows.Next() {
		var row ClusterArticleItem
		if err := rows.Scan(
			&row.ArticleID,
			&row.Title,
			&row.URL,
			&row.Source,
			&row.PublishedAt,
			&row.Similarity,
			&row.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cluster article row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cluster article rows: %w", err)
	}

	return items, nil
}

func scanClusteringArticles(rows *Rows, sizeHint int) ([]ClusteringArticle, error) {
	items := make([]ClusteringArticle, 0, sizeHint)
	for rows.Next() {
		var row ClusteringArticle
		if err := rows.Scan(
			&row.ArticleID,
			&row.Title,
			&row.Summary,
			&row.Source,
			&row.SourceCredibility,
			&row.Language,
			&row.PublishedAt,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}
	return items, nil
}
