// Package trending ranks topic clusters by sustained velocity and flags
// short-window spikes as breaking news.
package trending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"topicwire/internal/config"
	"topicwire/internal/db"
	"topicwire/internal/globaltime"
)

// baselineDays is the trailing window the daily velocity baseline averages.
const baselineDays = 7

// Window is a supported trending window.
type Window string

const (
	WindowDay   Window = "1d"
	WindowWeek  Window = "1w"
	WindowMonth Window = "1m"
)

// ParseWindow validates a window name from the CLI or HTTP API.
func ParseWindow(raw string) (Window, error) {
	switch Window(raw) {
	case WindowDay, WindowWeek, WindowMonth:
		return Window(raw), nil
	case "":
		return WindowDay, nil
	default:
		return "", fmt.Errorf("unknown trending window %q (want 1d, 1w, or 1m)", raw)
	}
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// TrendingCluster is one ranked trending result.
type TrendingCluster struct {
	ClusterID               int64      `json:"cluster_id"`
	Label                   string     `json:"label"`
	Score                   float64    `json:"score"`
	Velocity                float64    `json:"velocity"`
	WindowCount             int        `json:"window_count"`
	ArticleCount            int        `json:"article_count"`
	DistinctSources         int        `json:"distinct_sources"`
	ExternalEvents          int        `json:"external_events"`
	RepresentativeTitle     *string    `json:"representative_title,omitempty"`
	RepresentativeURL       *string    `json:"representative_url,omitempty"`
	RepresentativePublished *time.Time `json:"representative_published_at,omitempty"`
	FirstSeen               time.Time  `json:"first_seen"`
	LastSeen                time.Time  `json:"last_seen"`
}

// BreakingCluster is one flagged spike.
type BreakingCluster struct {
	ClusterID               int64      `json:"cluster_id"`
	Label                   string     `json:"label"`
	SpikeMagnitude          float64    `json:"spike_magnitude"`
	CurrentCount            int        `json:"current_count"`
	BaselineHourlyAvg       float64    `json:"baseline_hourly_avg"`
	IsNewStory              bool       `json:"is_new_story"`
	ArticleCount            int        `json:"article_count"`
	RepresentativeTitle     *string    `json:"representative_title,omitempty"`
	RepresentativeURL       *string    `json:"representative_url,omitempty"`
	RepresentativePublished *time.Time `json:"representative_published_at,omitempty"`
}

// Service computes trending and breaking rankings and refreshes the
// per-cluster stat tables.
type Service struct {
	pool   *db.Pool
	cfg    *config.Config
	logger zerolog.Logger
}

func NewService(pool *db.Pool, cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return &Service{pool: pool, cfg: cfg, logger: logger}, nil
}

// Trending ranks active clusters by velocity within the window.
func (s *Service) Trending(ctx context.Context, window Window, limit int) ([]TrendingCluster, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("trending service is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	now := globaltime.UTC()
	inputs, err := s.pool.ListTrendingInputs(ctx, now, now.Add(-window.Duration()), baselineDays)
	if err != nil {
		return nil, err
	}

	ranked := make([]TrendingCluster, 0, len(inputs))
	for _, in := range inputs {
		if in.WindowCount == 0 {
			continue
		}
		velocity, score := TrendingScore(in, now)
		ranked = append(ranked, TrendingCluster{
			ClusterID:               in.ClusterID,
			Label:                   in.Label,
			Score:                   score,
			Velocity:                velocity,
			WindowCount:             in.WindowCount,
			ArticleCount:            in.ArticleCount,
			DistinctSources:         in.DistinctSources,
			ExternalEvents:          in.ExternalEvents,
			RepresentativeTitle:     in.RepresentativeTitle,
			RepresentativeURL:       in.RepresentativeURL,
			RepresentativePublished: in.RepresentativePublished,
			FirstSeen:               in.FirstSeen,
			LastSeen:                in.LastSeen,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// TrendingScore computes (velocity, score) for one cluster. A zero baseline
// doubles the window count instead of dividing by zero.
func TrendingScore(in db.TrendingInput, now time.Time) (float64, float64) {
	var velocity float64
	if in.DailyBaseline > 0 {
		velocity = float64(in.WindowCount) / in.DailyBaseline
	} else {
		velocity = float64(in.WindowCount) * 2
	}

	recencyBonus := 1.0
	age := now.Sub(in.FirstSeen)
	switch {
	case age < 24*time.Hour:
		recencyBonus = 1.5
	case age < 72*time.Hour:
		recencyBonus = 1.2
	}

	diversityFactor := 1 + float64(in.DistinctSources)*0.1
	externalBonus := 1 + float64(in.ExternalEvents)*0.05

	return velocity, velocity * diversityFactor * recencyBonus * externalBonus
}

// Breaking returns clusters whose current 3-hour count spikes over the
// trailing hourly baseline, ordered by magnitude.
func (s *Service) Breaking(ctx context.Context, limit int) ([]BreakingCluster, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("trending service is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	now := globaltime.UTC()
	inputs, err := s.pool.ListBreakingInputs(ctx, now)
	if err != nil {
		return nil, err
	}

	flagged := make([]BreakingCluster, 0, len(inputs))
	for _, in := range inputs {
		isSpike, magnitude := SpikeVerdict(in.CurrentCount, in.BaselineHourlyAvg, s.cfg.SpikeThreshold)
		if !isSpike {
			continue
		}
		flagged = append(flagged, BreakingCluster{
			ClusterID:               in.ClusterID,
			Label:                   in.Label,
			SpikeMagnitude:          magnitude,
			CurrentCount:            in.CurrentCount,
			BaselineHourlyAvg:       in.BaselineHourlyAvg,
			IsNewStory:              IsNewStory(in.RepresentativePublished, now),
			ArticleCount:            in.ArticleCount,
			RepresentativeTitle:     in.RepresentativeTitle,
			RepresentativeURL:       in.RepresentativeURL,
			RepresentativePublished: in.RepresentativePublished,
		})
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].SpikeMagnitude > flagged[j].SpikeMagnitude
	})
	if len(flagged) > limit {
		flagged = flagged[:limit]
	}
	return flagged, nil
}

// SpikeVerdict compares the current short-window count against the hourly
// baseline. A zero baseline never spikes: a story with no history is new,
// not breaking.
func SpikeVerdict(currentCount int, baselineHourlyAvg, threshold float64) (bool, float64) {
	if baselineHourlyAvg <= 0 {
		return false, 0
	}
	magnitude := float64(currentCount) / baselineHourlyAvg
	return magnitude >= threshold, magnitude
}

// IsNewStory reports whether the representative article is under six hours
// old.
func IsNewStory(published *time.Time, now time.Time) bool {
	if published == nil {
		return false
	}
	return now.Sub(published.UTC()) < 6*time.Hour
}
