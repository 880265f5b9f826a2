package cluster

import "testing"

func TestSelectCluster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		groupKeywords []string
		candidates    []Candidate
		wantMatched   bool
		wantCluster   int64
	}{
		{
			name:          "similarity plus keyword overlap matches",
			groupKeywords: []string{"election", "senate"},
			candidates: []Candidate{
				{ClusterID: 7, Similarity: 0.85, Keywords: []string{"senate", "vote"}},
			},
			wantMatched: true,
			wantCluster: 7,
		},
		{
			name:          "disjoint keywords reject a borderline candidate",
			groupKeywords: []string{"election", "senate"},
			candidates: []Candidate{
				{ClusterID: 7, Similarity: 0.85, Keywords: []string{"weather", "storm"}},
			},
			wantMatched: false,
		},
		{
			name:          "high similarity bypasses the keyword gate",
			groupKeywords: []string{"election", "senate"},
			candidates: []Candidate{
				{ClusterID: 7, Similarity: 0.92, Keywords: []string{"weather", "storm"}},
			},
			wantMatched: true,
			wantCluster: 7,
		},
		{
			name:          "missing keywords on either side is not a blocker",
			groupKeywords: nil,
			candidates: []Candidate{
				{ClusterID: 3, Similarity: 0.83, Keywords: []string{"weather"}},
			},
			wantMatched: true,
			wantCluster: 3,
		},
		{
			name:          "below base threshold never matches",
			groupKeywords: []string{"election"},
			candidates: []Candidate{
				{ClusterID: 7, Similarity: 0.81, Keywords: []string{"election"}},
			},
			wantMatched: false,
		},
		{
			name:          "first qualifying candidate wins",
			groupKeywords: []string{"election"},
			candidates: []Candidate{
				{ClusterID: 1, Similarity: 0.88, Keywords: []string{"weather"}},
				{ClusterID: 2, Similarity: 0.86, Keywords: []string{"election"}},
				{ClusterID: 3, Similarity: 0.85, Keywords: []string{"election"}},
			},
			wantMatched: true,
			wantCluster: 2,
		},
		{
			name:        "no candidates",
			candidates:  nil,
			wantMatched: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SelectCluster(tt.groupKeywords, tt.candidates, 0.82, 0.90)
			if got.Matched != tt.wantMatched {
				t.Fatalf("matched = %v, want %v", got.Matched, tt.wantMatched)
			}
			if got.Matched && got.ClusterID != tt.wantCluster {
				t.Fatalf("cluster = %d, want %d", got.ClusterID, tt.wantCluster)
			}
		})
	}
}
