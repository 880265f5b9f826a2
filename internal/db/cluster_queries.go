package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ClusterSummary is the cluster shape returned to the CLI and HTTP API.
type ClusterSummary struct {
	ClusterID               int64      `json:"cluster_id"`
	Label                   string     `json:"label"`
	Keywords                []string   `json:"keywords"`
	ArticleCount            int        `json:"article_count"`
	Status                  string     `json:"status"`
	MergedIntoID            *int64     `json:"merged_into_id,omitempty"`
	CentroidArticleID       *int64     `json:"centroid_article_id,omitempty"`
	RepresentativeTitle     *string    `json:"representative_title,omitempty"`
	RepresentativeURL       *string    `json:"representative_url,omitempty"`
	RepresentativePublished *time.Time `json:"representative_published_at,omitempty"`
	FirstSeen               time.Time  `json:"first_seen"`
	LastSeen                time.Time  `json:"last_seen"`
}

// ActiveCluster is the slim cluster row the assignment and merge jobs use.
type ActiveCluster struct {
	ClusterID         int64
	Keywords          []string
	ArticleCount      int
	CentroidArticleID *int64
	Version           int64
	LastSeen          time.Time
}

const clusterSummaryQuery = `
SELECT
	c.cluster_id,
	c.label,
	c.keywords,
	c.article_count,
	c.status,
	c.merged_into_id,
	c.centroid_article_id,
	a.title,
	a.url,
	a.published_at,
	c.first_seen,
	c.last_seen
FROM news.topic_clusters c
LEFT JOIN news.articles a ON a.article_id = c.centroid_article_id
`

// InsertCluster creates a new active cluster and returns its id.
func InsertCluster(ctx context.Context, tx Tx, label string, keywords []string, articleCount int, centroidArticleID *int64, firstSeen, lastSeen time.Time) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}

	kw, err := marshalKeywords(keywords)
	if err != nil {
		return 0, err
	}

	const q = `
INSERT INTO news.topic_clusters
	(label, keywords, article_count, centroid_article_id, status, first_seen, last_seen)
VALUES ($1, $2, $3, $4, 'active', $5, $6)
RETURNING cluster_id
`

	var id int64
	if err := tx.QueryRow(ctx, q, label, kw, articleCount, centroidArticleID, firstSeen.UTC(), lastSeen.UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert cluster: %w", err)
	}
	return id, nil
}

// GetActiveClustersByID re-validates candidate clusters inside a transaction.
// Clusters that are missing or merged are silently absent from the result.
func GetActiveClustersByID(ctx context.Context, tx Tx, ids []int64) (map[int64]ActiveCluster, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}
	if len(ids) == 0 {
		return map[int64]ActiveCluster{}, nil
	}

	const q = `
SELECT
	c.cluster_id,
	c.keywords,
	c.article_count,
	c.centroid_article_id,
	c.version,
	c.last_seen
FROM news.topic_clusters c
WHERE c.cluster_id = ANY($1)
  AND c.status = 'active'
`

	rows, err := tx.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("query active clusters: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]ActiveCluster, len(ids))
	for rows.Next() {
		var (
			c  ActiveCluster
			kw []byte
		)
		if err := rows.Scan(&c.ClusterID, &kw, &c.ArticleCount, &c.CentroidArticleID, &c.Version, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("scan active cluster row: %w", err)
		}
		c.Keywords, err = unmarshalKeywords(kw)
		if err != nil {
			return nil, err
		}
		out[c.ClusterID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active cluster rows: %w", err)
	}
	return out, nil
}

// ListActiveClusters returns active clusters ordered by size, largest first.
func (p *Pool) ListActiveClusters(ctx context.Context, limit int) ([]ActiveCluster, error) {
	if limit <= 0 {
		limit = 1000
	}

	const q = `
SELECT
	c.cluster_id,
	c.keywords,
	c.article_count,
	c.centroid_article_id,
	c.version,
	c.last_seen
FROM news.topic_clusters c
WHERE c.status = 'active'
ORDER BY c.article_count DESC, c.cluster_id ASC
LIMIT $1
`

	rows, err := p.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query active clusters: %w", err)
	}
	defer rows.Close()

	out := make([]ActiveCluster, 0, limit)
	for rows.Next() {
		var (
			c  ActiveCluster
			kw []byte
		)
		if err := rows.Scan(&c.ClusterID, &kw, &c.ArticleCount, &c.CentroidArticleID, &c.Version, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("scan active cluster row: %w", err)
		}
		c.Keywords, err = unmarshalKeywords(kw)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active cluster rows: %w", err)
	}
	return out, nil
}

// GetClusterSummary loads one cluster with its representative article.
func (p *Pool) GetClusterSummary(ctx context.Context, clusterID int64) (*ClusterSummary, error) {
	q := clusterSummaryQuery + `WHERE c.cluster_id = $1`

	var (
		row ClusterSummary
		kw  []byte
	)
	err := p.QueryRow(ctx, q, clusterID).Scan(
		&row.ClusterID,
		&row.Label,
		&kw,
		&row.ArticleCount,
		&row.Status,
		&row.MergedIntoID,
		&row.CentroidArticleID,
		&row.RepresentativeTitle,
		&row.RepresentativeURL,
		&row.RepresentativePublished,
		&row.FirstSeen,
		&row.LastSeen,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query cluster summary: %w", err)
	}
	row.Keywords, err = unmarshalKeywords(kw)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListClusterSummaries lists clusters for the CLI and HTTP API.
func (p *Pool) ListClusterSummaries(ctx context.Context, status string, limit int) ([]ClusterSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	q := clusterSummaryQuery + `
WHERE ($1 = '' OR c.status = $1)
ORDER BY c.last_seen DESC, c.cluster_id DESC
LIMIT $2
`

	rows, err := p.Query(ctx, q, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query cluster summaries: %w", err)
	}
	defer rows.Close()

	out := make([]ClusterSummary, 0, limit)
	for rows.Next() {
		var (
			row ClusterSummary
			kw  []byte
		)
		if err := rows.Scan(
			&row.ClusterID,
			&row.Label,
			&kw,
			&row.ArticleCount,
			&row.Status,
			&row.MergedIntoID,
			&row.CentroidArticleID,
			&row.RepresentativeTitle,
			&row.RepresentativeURL,
			&row.RepresentativePublished,
			&row.FirstSeen,
			&row.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("scan cluster summary row: %w", err)
		}
		row.Keywords, err = unmarshalKeywords(kw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cluster summary rows: %w", err)
	}
	return out, nil
}

// InsertArticleTopics bulk-inserts membership rows, skipping articles that
// already have one.
func InsertArticleTopics(ctx context.Context, tx Tx, clusterID int64, memberships []ArticleTopic) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}

	const q = `
INSERT INTO news.article_topics (article_id, cluster_id, similarity)
VALUES ($1, $2, $3)
ON CONFLICT (article_id) DO NOTHING
`

	var inserted int64
	for _, m := range memberships {
		tag, err := tx.Exec(ctx, q, m.ArticleID, clusterID, m.Similarity)
		if err != nil {
			return inserted, fmt.Errorf("insert article_topic for article %d: %w", m.ArticleID, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// ApplyClusterGrowth increments article_count, advances last_seen, and
// fills centroid_article_id if unset. The version guard keeps concurrent
// writers from clobbering each other's counts.
func ApplyClusterGrowth(ctx context.Context, tx Tx, clusterID int64, version int64, addedCount int, centroidArticleID int64, seenAt time.Time) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	const q = `
UPDATE news.topic_clusters
SET article_count = article_count + $3,
    last_seen = GREATEST(last_seen, $4),
    centroid_article_id = COALESCE(centroid_article_id, $5),
    version = version + 1,
    updated_at = now()
WHERE cluster_id = $1
  AND version = $2
  AND status = 'active'
`

	tag, err := tx.Exec(ctx, q, clusterID, version, addedCount, seenAt.UTC(), centroidArticleID)
	if err != nil {
		return fmt.Errorf("apply cluster growth: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cluster %d changed concurrently: %w", clusterID, ErrNoRows)
	}
	return nil
}

func marshalKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	kw, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}
	return kw, nil
}

func unmarshalKeywords(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
