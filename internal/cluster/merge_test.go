package cluster

import (
	"testing"

	"topicwire/internal/index"
)

func TestPlanMergesLargerClusterAbsorbsSmaller(t *testing.T) {
	t.Parallel()

	// cosine(Cx, Cy) = 0.85 at the default 0.80 threshold.
	plan := PlanMerges([]MergeCandidate{
		{ClusterID: 1, ArticleCount: 10, Centroid: index.Vector{1, 0}},
		{ClusterID: 2, ArticleCount: 3, Centroid: index.Vector{0.85, 0.52678}},
	}, 0.80)

	if len(plan) != 1 {
		t.Fatalf("expected 1 merge, got %d", len(plan))
	}
	if plan[0].TargetID != 1 || plan[0].SourceID != 2 {
		t.Fatalf("expected cluster 1 to absorb cluster 2, got %+v", plan[0])
	}
	if plan[0].Similarity < 0.84 || plan[0].Similarity > 0.86 {
		t.Fatalf("unexpected similarity %v", plan[0].Similarity)
	}
}

func TestPlanMergesSkipsMergedAwayClusters(t *testing.T) {
	t.Parallel()

	// B is close to A (0.90) and close to C (0.83), but A and C are far
	// apart (0.50). Once B merges into A, the B-C pair must be skipped:
	// chains resolve on the next pass, never transitively within one.
	a := index.Vector{1, 0}
	b := index.Vector{0.9, 0.43589}
	c := index.Vector{0.5, 0.86603}

	if sim := index.CosineSimilarity(b, c); sim < 0.80 {
		t.Fatalf("test setup: sim(b,c)=%v should exceed the threshold", sim)
	}

	plan := PlanMerges([]MergeCandidate{
		{ClusterID: 1, ArticleCount: 10, Centroid: a},
		{ClusterID: 2, ArticleCount: 5, Centroid: b},
		{ClusterID: 3, ArticleCount: 4, Centroid: c},
	}, 0.80)

	if len(plan) != 1 {
		t.Fatalf("expected 1 merge, got %+v", plan)
	}
	if plan[0].TargetID != 1 || plan[0].SourceID != 2 {
		t.Fatalf("expected only 1 absorbing 2, got %+v", plan[0])
	}
}

func TestPlanMergesIgnoresMissingCentroids(t *testing.T) {
	t.Parallel()

	plan := PlanMerges([]MergeCandidate{
		{ClusterID: 1, ArticleCount: 10, Centroid: index.Vector{1, 0}},
		{ClusterID: 2, ArticleCount: 3, Centroid: nil},
	}, 0.80)

	if len(plan) != 0 {
		t.Fatalf("expected no merges, got %+v", plan)
	}
}

func TestPlanMergesBelowThreshold(t *testing.T) {
	t.Parallel()

	plan := PlanMerges([]MergeCandidate{
		{ClusterID: 1, ArticleCount: 10, Centroid: index.Vector{1, 0}},
		{ClusterID: 2, ArticleCount: 3, Centroid: index.Vector{0.5, 0.86603}},
	}, 0.80)

	if len(plan) != 0 {
		t.Fatalf("expected no merges, got %+v", plan)
	}
}
