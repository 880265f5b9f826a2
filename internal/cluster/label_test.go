package cluster

import (
	"testing"
	"time"
)

func TestScoreTitle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-1 * time.Hour)

	tests := []struct {
		name      string
		candidate TitleCandidate
		want      float64
	}{
		{
			name: "good length with proper nouns and medium credibility",
			candidate: TitleCandidate{
				Title:       "Mars Rover Finds Evidence of Ancient Water Deposits",
				Credibility: "medium",
			},
			// 10 length + 2 credibility + 3 for two capitalized runs.
			want: 15,
		},
		{
			name: "generic terms are penalized",
			candidate: TitleCandidate{
				Title: "breaking update",
			},
			// 3 length - 5 breaking - 5 update.
			want: -7,
		},
		{
			name: "capitalized run bonus is capped",
			candidate: TitleCandidate{
				Title: "Alpha Beta cat Gamma Delta cat Epsilon Zeta cat Eta Theta cat Iota Kappa cat Lambda Mu",
			},
			// 10 length + 8 capped bonus for six runs.
			want: 18,
		},
		{
			name: "recency bonus for fresh high-credibility titles",
			candidate: TitleCandidate{
				Title:       "quiet local council meeting covers annual budget",
				Credibility: "high",
				PublishedAt: &recent,
			},
			// 10 length + 5 credibility + 3 recency, no capitalized runs.
			want: 18,
		},
		{
			name: "multibyte titles are measured in characters",
			candidate: TitleCandidate{
				// 59 characters but over 100 bytes; must land in the top
				// length bucket like an ASCII title of the same length.
				Title: "Центральный банк повысил ключевую ставку на четверть пункта",
			},
			want: 10,
		},
		{
			name:      "empty title scores zero",
			candidate: TitleCandidate{Title: "   "},
			want:      0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ScoreTitle(tt.candidate, now); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateLabelPicksBestTitle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	label := GenerateLabel([]TitleCandidate{
		{Title: "breaking update"},
		{Title: "Mars Rover Finds Evidence of Ancient Water Deposits", Credibility: "high"},
		{Title: "short"},
	}, now)

	if label != "Mars Rover Finds Evidence of Ancient Water Deposits" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestGenerateLabelFallsBackToFirstLongTitle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// All candidates score at or below 5.0, so the first title longer than
	// ten characters wins.
	label := GenerateLabel([]TitleCandidate{
		{Title: "tiny"},
		{Title: "a modest headline"},
		{Title: "another modest headline"},
	}, now)

	if label != "a modest headline" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestGenerateLabelFinalFallback(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	if label := GenerateLabel([]TitleCandidate{{Title: "tiny"}}, now); label != "Topic" {
		t.Fatalf("unexpected label %q", label)
	}
	if label := GenerateLabel(nil, now); label != "Topic" {
		t.Fatalf("unexpected label %q", label)
	}
}
