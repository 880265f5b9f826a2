package trending

import (
	"math"
	"testing"
	"time"

	"topicwire/internal/db"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]Window{
		"1d": WindowDay,
		"1w": WindowWeek,
		"1m": WindowMonth,
		"":   WindowDay,
	} {
		got, err := ParseWindow(raw)
		if err != nil {
			t.Fatalf("ParseWindow(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseWindow(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := ParseWindow("2h"); err == nil {
		t.Fatalf("expected error for unknown window")
	}
}

func TestTrendingScore(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("velocity against baseline", func(t *testing.T) {
		t.Parallel()

		velocity, score := TrendingScore(db.TrendingInput{
			WindowCount:     8,
			DailyBaseline:   2,
			DistinctSources: 3,
			FirstSeen:       now.Add(-10 * 24 * time.Hour),
		}, now)

		if !almostEqual(velocity, 4) {
			t.Fatalf("velocity = %v, want 4", velocity)
		}
		// 4 * (1 + 0.3) * 1.0 recency * 1.0 external.
		if !almostEqual(score, 5.2) {
			t.Fatalf("score = %v, want 5.2", score)
		}
	})

	t.Run("zero baseline doubles the window count", func(t *testing.T) {
		t.Parallel()

		velocity, _ := TrendingScore(db.TrendingInput{
			WindowCount:   5,
			DailyBaseline: 0,
			FirstSeen:     now.Add(-10 * 24 * time.Hour),
		}, now)

		if !almostEqual(velocity, 10) {
			t.Fatalf("velocity = %v, want 10", velocity)
		}
	})

	t.Run("recency bonus tiers", func(t *testing.T) {
		t.Parallel()

		base := db.TrendingInput{WindowCount: 2, DailyBaseline: 2}

		fresh := base
		fresh.FirstSeen = now.Add(-12 * time.Hour)
		_, freshScore := TrendingScore(fresh, now)
		if !almostEqual(freshScore, 1.5) {
			t.Fatalf("fresh score = %v, want 1.5", freshScore)
		}

		recent := base
		recent.FirstSeen = now.Add(-48 * time.Hour)
		_, recentScore := TrendingScore(recent, now)
		if !almostEqual(recentScore, 1.2) {
			t.Fatalf("recent score = %v, want 1.2", recentScore)
		}

		old := base
		old.FirstSeen = now.Add(-100 * time.Hour)
		_, oldScore := TrendingScore(old, now)
		if !almostEqual(oldScore, 1.0) {
			t.Fatalf("old score = %v, want 1.0", oldScore)
		}
	})

	t.Run("surge over a quiet week outranks a steady cluster", func(t *testing.T) {
		t.Parallel()

		// 8 articles in a day against a week averaging 2/day is a 4x surge.
		// A cluster steadily posting 10/day holds velocity 1 and must rank
		// below it, no matter how large its absolute volume is.
		surgeVelocity, surgeScore := TrendingScore(db.TrendingInput{
			WindowCount:   8,
			DailyBaseline: 2,
			FirstSeen:     now.Add(-10 * 24 * time.Hour),
		}, now)
		steadyVelocity, steadyScore := TrendingScore(db.TrendingInput{
			WindowCount:   10,
			DailyBaseline: 10,
			FirstSeen:     now.Add(-40 * 24 * time.Hour),
		}, now)

		if !almostEqual(surgeVelocity, 4) {
			t.Fatalf("surge velocity = %v, want 4", surgeVelocity)
		}
		if !almostEqual(steadyVelocity, 1) {
			t.Fatalf("steady velocity = %v, want 1", steadyVelocity)
		}
		if surgeScore <= steadyScore {
			t.Fatalf("surge score %v must exceed steady score %v", surgeScore, steadyScore)
		}
	})

	t.Run("external events multiply the score", func(t *testing.T) {
		t.Parallel()

		_, score := TrendingScore(db.TrendingInput{
			WindowCount:    2,
			DailyBaseline:  2,
			ExternalEvents: 4,
			FirstSeen:      now.Add(-100 * time.Hour),
		}, now)

		// 1 velocity * 1.2 external bonus.
		if !almostEqual(score, 1.2) {
			t.Fatalf("score = %v, want 1.2", score)
		}
	})
}

func TestBaselineWindowIsOneWeek(t *testing.T) {
	t.Parallel()

	// The daily velocity baseline averages the trailing week. A longer
	// window dilutes velocity for clusters whose volume recently dropped.
	if baselineDays != 7 {
		t.Fatalf("baseline window = %d days, want 7", baselineDays)
	}
}

func TestSpikeVerdict(t *testing.T) {
	t.Parallel()

	// Hourly counts of [2,1,2,1,2,1,2] average about 1.57; a 3-hour burst
	// of 6 articles is a 3.8x spike.
	baseline := 11.0 / 7.0
	isSpike, magnitude := SpikeVerdict(6, baseline, 2.0)
	if !isSpike {
		t.Fatalf("expected a spike")
	}
	if magnitude < 3.7 || magnitude > 3.9 {
		t.Fatalf("magnitude = %v, want about 3.8", magnitude)
	}

	if isSpike, _ := SpikeVerdict(3, baseline, 2.0); isSpike {
		t.Fatalf("ratio below threshold must not spike")
	}

	if isSpike, magnitude := SpikeVerdict(10, 0, 2.0); isSpike || magnitude != 0 {
		t.Fatalf("zero baseline must never spike, got %v %v", isSpike, magnitude)
	}
}

func TestIsNewStory(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	fresh := now.Add(-2 * time.Hour)
	if !IsNewStory(&fresh, now) {
		t.Fatalf("2h-old representative should be new")
	}

	stale := now.Add(-8 * time.Hour)
	if IsNewStory(&stale, now) {
		t.Fatalf("8h-old representative should not be new")
	}

	if IsNewStory(nil, now) {
		t.Fatalf("missing representative is never new")
	}
}

func TestWindowDuration(t *testing.T) {
	t.Parallel()

	if WindowDay.Duration() != 24*time.Hour {
		t.Fatalf("unexpected 1d duration")
	}
	if WindowWeek.Duration() != 7*24*time.Hour {
		t.Fatalf("unexpected 1w duration")
	}
	if WindowMonth.Duration() != 30*24*time.Hour {
		t.Fatalf("unexpected 1m duration")
	}
}
