package db

import (
	"context"
	"fmt"
	"time"
)

// DeleteOverlappingArticleTopics removes membership rows in the source
// cluster for articles that already belong to the target, so re-pointing
// cannot create duplicate memberships.
func DeleteOverlappingArticleTopics(ctx context.Context, tx Tx, sourceID, targetID int64) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}

	const q = `
DELETE FROM news.article_topics src
WHERE src.cluster_id = $1
  AND EXISTS (
	SELECT 1 FROM news.article_topics tgt
	WHERE tgt.cluster_id = $2
	  AND tgt.article_id = src.article_id
  )
`

	tag, err := tx.Exec(ctx, q, sourceID, targetID)
	if err != nil {
		return 0, fmt.Errorf("delete overlapping article_topics: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RepointArticleTopics moves the remaining source memberships to the target.
func RepointArticleTopics(ctx context.Context, tx Tx, sourceID, targetID int64) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}

	const q = `
UPDATE news.article_topics
SET cluster_id = $2
WHERE cluster_id = $1
`

	tag, err := tx.Exec(ctx, q, sourceID, targetID)
	if err != nil {
		return 0, fmt.Errorf("repoint article_topics: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecountCluster sets article_count to the exact membership count and
// advances last_seen. Returns the recounted value.
func RecountCluster(ctx context.Context, tx Tx, clusterID int64, seenAt time.Time) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}

	const q = `
UPDATE news.topic_clusters
SET article_count = (
	SELECT COUNT(*) FROM news.article_topics WHERE cluster_id = $1
),
    last_seen = GREATEST(last_seen, $2),
    version = version + 1,
    updated_at = now()
WHERE cluster_id = $1
RETURNING article_count
`

	var count int
	if err := tx.QueryRow(ctx, q, clusterID, seenAt.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("recount cluster %d: %w", clusterID, err)
	}
	return count, nil
}

// MarkClusterMerged retires the source cluster and records its absorber.
func MarkClusterMerged(ctx context.Context, tx Tx, sourceID, targetID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	const q = `
UPDATE news.topic_clusters
SET status = 'merged',
    merged_into_id = $2,
    article_count = 0,
    version = version + 1,
    updated_at = now()
WHERE cluster_id = $1
  AND status = 'active'
`

	tag, err := tx.Exec(ctx, q, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("mark cluster %d merged: %w", sourceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cluster %d is not active: %w", sourceID, ErrNoRows)
	}
	return nil
}

// DeleteClusterStats drops the stats rows of a merged-away cluster.
func DeleteClusterStats(ctx context.Context, tx Tx, clusterID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM news.cluster_stats_daily WHERE cluster_id = $1`, clusterID); err != nil {
		return fmt.Errorf("delete daily stats for cluster %d: %w", clusterID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM news.cluster_stats_hourly WHERE cluster_id = $1`, clusterID); err != nil {
		return fmt.Errorf("delete hourly stats for cluster %d: %w", clusterID, err)
	}
	return nil
}
