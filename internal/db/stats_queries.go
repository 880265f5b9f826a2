package db

import (
	"context"
	"fmt"
	"time"
)

// TrendingInput carries the per-cluster numbers the trending ranker scores.
type TrendingInput struct {
	ClusterID               int64
	Label                   string
	ArticleCount            int
	WindowCount             int
	DailyBaseline           float64
	DistinctSources         int
	ExternalEvents          int
	NewestPublishedAt       *time.Time
	RepresentativeTitle     *string
	RepresentativeURL       *string
	RepresentativePublished *time.Time
	FirstSeen               time.Time
	LastSeen                time.Time
}

// BreakingInput carries the per-cluster numbers the breaking detector scores.
type BreakingInput struct {
	ClusterID               int64
	Label                   string
	ArticleCount            int
	CurrentCount            int
	BaselineHourlyAvg       float64
	RepresentativeTitle     *string
	RepresentativeURL       *string
	RepresentativePublished *time.Time
	FirstSeen               time.Time
}

// UpsertDailyStats recomputes the daily row for every active cluster on the
// given UTC date.
func (p *Pool) UpsertDailyStats(ctx context.Context, day time.Time) (int64, error) {
	const q = `
INSERT INTO news.cluster_stats_daily
	(cluster_id, stat_date, article_count, distinct_sources, external_event_count, updated_at)
SELECT
	c.cluster_id,
	$1::date,
	COUNT(a.article_id),
	COUNT(DISTINCT a.source),
	(
		SELECT COUNT(*) FROM news.cluster_external_events e
		WHERE e.cluster_id = c.cluster_id
		  AND e.occurred_at >= $1::date
		  AND e.occurred_at < $1::date + INTERVAL '1 day'
	),
	now()
FROM news.topic_clusters c
LEFT JOIN news.article_topics at ON at.cluster_id = c.cluster_id
LEFT JOIN news.articles a
	ON a.article_id = at.article_id
	AND COALESCE(a.published_at, a.created_at) >= $1::date
	AND COALESCE(a.published_at, a.created_at) < $1::date + INTERVAL '1 day'
WHERE c.status = 'active'
GROUP BY c.cluster_id
ON CONFLICT (cluster_id, stat_date) DO UPDATE
SET article_count = EXCLUDED.article_count,
    distinct_sources = EXCLUDED.distinct_sources,
    external_event_count = EXCLUDED.external_event_count,
    updated_at = now()
`

	tag, err := p.Exec(ctx, q, day.UTC().Truncate(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("upsert daily stats: %w", err)
	}
	return tag.RowsAffected(), nil
}

const upsertHourlyCountsSQL = `
INSERT INTO news.cluster_stats_hourly
	(cluster_id, stat_hour, article_count, distinct_sources, updated_at)
SELECT
	c.cluster_id,
	$1,
	COUNT(a.article_id),
	COUNT(DISTINCT a.source),
	now()
FROM news.topic_clusters c
LEFT JOIN news.article_topics at ON at.cluster_id = c.cluster_id
LEFT JOIN news.articles a
	ON a.article_id = at.article_id
	AND COALESCE(a.published_at, a.created_at) >= $1
	AND COALESCE(a.published_at, a.created_at) < $1 + INTERVAL '1 hour'
WHERE c.status = 'active'
GROUP BY c.cluster_id
ON CONFLICT (cluster_id, stat_hour) DO UPDATE
SET article_count = EXCLUDED.article_count,
    distinct_sources = EXCLUDED.distinct_sources,
    updated_at = now()
`

// UpsertHourlyCounts recomputes the hourly row for every active cluster for
// the given UTC hour. Spike fields are filled in afterwards.
func (p *Pool) UpsertHourlyCounts(ctx context.Context, hour time.Time) (int64, error) {
	tag, err := p.Exec(ctx, upsertHourlyCountsSQL, hour.UTC().Truncate(time.Hour))
	if err != nil {
		return 0, fmt.Errorf("upsert hourly counts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateHourlySpike writes the spike verdict for a cluster's hourly row.
func (p *Pool) UpdateHourlySpike(ctx context.Context, clusterID int64, hour time.Time, isSpike bool, magnitude float64) error {
	const q = `
UPDATE news.cluster_stats_hourly
SET is_spike = $3,
    spike_magnitude = $4,
    updated_at = now()
WHERE cluster_id = $1
  AND stat_hour = $2
`

	if _, err := p.Exec(ctx, q, clusterID, hour.UTC().Truncate(time.Hour), isSpike, magnitude); err != nil {
		return fmt.Errorf("update hourly spike for cluster %d: %w", clusterID, err)
	}
	return nil
}

// ListTrendingInputs gathers trending numbers for all active clusters. The
// window is [windowStart, now); the daily baseline averages the
// cluster_stats_daily rows of the preceding baselineDays days.
func (p *Pool) ListTrendingInputs(ctx context.Context, now, windowStart time.Time, baselineDays int) ([]TrendingInput, error) {
	if baselineDays <= 0 {
		baselineDays = 7
	}

	const q = `
SELECT
	c.cluster_id,
	c.label,
	c.article_count,
	COUNT(a.article_id) FILTER (
		WHERE COALESCE(a.published_at, a.created_at) >= $2
		  AND COALESCE(a.published_at, a.created_at) < $1
	),
	COALESCE((
		SELECT AVG(d.article_count)::double precision
		FROM news.cluster_stats_daily d
		WHERE d.cluster_id = c.cluster_id
		  AND d.stat_date >= ($1::date - $3::int)
		  AND d.stat_date < $1::date
	), 0),
	COUNT(DISTINCT a.source) FILTER (
		WHERE COALESCE(a.published_at, a.created_at) >= $2
		  AND COALESCE(a.published_at, a.created_at) < $1
	),
	(
		SELECT COUNT(*) FROM news.cluster_external_events e
		WHERE e.cluster_id = c.cluster_id
		  AND e.occurred_at >= $2
		  AND e.occurred_at < $1
	),
	MAX(COALESCE(a.published_at, a.created_at)),
	rep.title,
	rep.url,
	rep.published_at,
	c.first_seen,
	c.last_seen
FROM news.topic_clusters c
LEFT JOIN news.article_topics at ON at.cluster_id = c.cluster_id
LEFT JOIN news.articles a ON a.article_id = at.article_id
LEFT JOIN news.articles rep ON rep.article_id = c.centroid_article_id
WHERE c.status = 'active'
GROUP BY c.cluster_id, c.label, c.article_count, rep.title, rep.url, rep.published_at, c.first_seen, c.last_seen
`

	rows, err := p.Query(ctx, q, now.UTC(), windowStart.UTC(), baselineDays)
	if err != nil {
		return nil, fmt.Errorf("query trending inputs: %w", err)
	}
	defer rows.Close()

	var out []TrendingInput
	for rows.Next() {
		var row TrendingInput
		if err := rows.Scan(
			&row.ClusterID,
			&row.Label,
			&row.ArticleCount,
			&row.WindowCount,
			&row.DailyBaseline,
			&row.DistinctSources,
			&row.ExternalEvents,
			&row.NewestPublishedAt,
			&row.RepresentativeTitle,
			&row.RepresentativeURL,
			&row.RepresentativePublished,
			&row.FirstSeen,
			&row.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("scan trending input row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending input rows: %w", err)
	}
	return out, nil
}

// ListBreakingInputs gathers spike numbers for all active clusters: the
// article count of the last three hours against the average hourly count of
// the trailing seven days, excluding those three hours.
func (p *Pool) ListBreakingInputs(ctx context.Context, now time.Time) ([]BreakingInput, error) {
	const q = `
SELECT
	c.cluster_id,
	c.label,
	c.article_count,
	COUNT(a.article_id) FILTER (
		WHERE COALESCE(a.published_at, a.created_at) >= $1::timestamptz - INTERVAL '3 hours'
		  AND COALESCE(a.published_at, a.created_at) < $1
	),
	COALESCE((
		SELECT AVG(h.article_count)::double precision
		FROM news.cluster_stats_hourly h
		WHERE h.cluster_id = c.cluster_id
		  AND h.stat_hour >= $1::timestamptz - INTERVAL '7 days'
		  AND h.stat_hour < $1::timestamptz - INTERVAL '3 hours'
	), 0),
	rep.title,
	rep.url,
	rep.published_at,
	c.first_seen
FROM news.topic_clusters c
LEFT JOIN news.article_topics at ON at.cluster_id = c.cluster_id
LEFT JOIN news.articles a ON a.article_id = at.article_id
LEFT JOIN news.articles rep ON rep.article_id = c.centroid_article_id
WHERE c.status = 'active'
GROUP BY c.cluster_id, c.label, c.article_count, rep.title, rep.url, rep.published_at, c.first_seen
`

	rows, err := p.Query(ctx, q, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query breaking inputs: %w", err)
	}
	defer rows.Close()

	var out []BreakingInput
	for rows.Next() {
		var row BreakingInput
		if err := rows.Scan(
			&row.ClusterID,
			&row.Label,
			&row.ArticleCount,
			&row.CurrentCount,
			&row.BaselineHourlyAvg,
			&row.RepresentativeTitle,
			&row.RepresentativeURL,
			&row.RepresentativePublished,
			&row.FirstSeen,
		); err != nil {
			return nil, fmt.Errorf("scan breaking input row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate breaking input rows: %w", err)
	}
	return out, nil
}
