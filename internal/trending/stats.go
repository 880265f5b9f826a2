package trending

import (
	"context"
	"fmt"
	"time"

	"topicwire/internal/globaltime"
)

// RefreshStats recomputes today's daily rows and the current hour's hourly
// rows for every active cluster, then re-evaluates spike flags against the
// trailing seven-day baseline. Returns the number of stat rows touched.
func (s *Service) RefreshStats(ctx context.Context) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("trending service is not initialized")
	}

	now := globaltime.UTC()

	daily, err := s.pool.UpsertDailyStats(ctx, now)
	if err != nil {
		return 0, err
	}
	hourly, err := s.pool.UpsertHourlyCounts(ctx, now)
	if err != nil {
		return daily, err
	}

	flagged, err := s.refreshSpikes(ctx, now)
	if err != nil {
		return daily + hourly, err
	}

	s.logger.Info().
		Int64("daily_rows", daily).
		Int64("hourly_rows", hourly).
		Int("spikes", flagged).
		Msg("refreshed cluster stats")
	return daily + hourly, nil
}

func (s *Service) refreshSpikes(ctx context.Context, now time.Time) (int, error) {
	inputs, err := s.pool.ListBreakingInputs(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("load spike inputs: %w", err)
	}

	hour := now.Truncate(time.Hour)
	flagged := 0
	for _, in := range inputs {
		isSpike, magnitude := SpikeVerdict(in.CurrentCount, in.BaselineHourlyAvg, s.cfg.SpikeThreshold)
		if err := s.pool.UpdateHourlySpike(ctx, in.ClusterID, hour, isSpike, magnitude); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("cluster_id", in.ClusterID).
				Msg("failed to record spike verdict")
			continue
		}
		if isSpike {
			flagged++
		}
	}
	return flagged, nil
}
