package cluster

import (
	"sort"

	"topicwire/internal/index"
)

// MergeCandidate is an active cluster with its retrieved centroid.
type MergeCandidate struct {
	ClusterID    int64
	ArticleCount int
	Centroid     index.Vector
}

// MergePair is one planned merge: source folds into target.
type MergePair struct {
	TargetID   int64
	SourceID   int64
	Similarity float64
}

// PlanMerges compares all centroid pairs and returns the merges to perform,
// larger cluster absorbing smaller. A cluster merged away in this plan is
// skipped for the rest of the pass, so chains resolve on the next run rather
// than transitively here.
func PlanMerges(candidates []MergeCandidate, threshold float64) []MergePair {
	ordered := make([]MergeCandidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Centroid) == 0 {
			continue
		}
		ordered = append(ordered, c)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ArticleCount != ordered[j].ArticleCount {
			return ordered[i].ArticleCount > ordered[j].ArticleCount
		}
		return ordered[i].ClusterID < ordered[j].ClusterID
	})

	var plan []MergePair
	merged := make(map[int64]struct{})
	for i := 0; i < len(ordered); i++ {
		target := ordered[i]
		if _, gone := merged[target.ClusterID]; gone {
			continue
		}
		for j := i + 1; j < len(ordered); j++ {
			source := ordered[j]
			if _, gone := merged[source.ClusterID]; gone {
				continue
			}
			sim := index.CosineSimilarity(target.Centroid, source.Centroid)
			if sim < threshold {
				continue
			}
			plan = append(plan, MergePair{
				TargetID:   target.ClusterID,
				SourceID:   source.ClusterID,
				Similarity: sim,
			})
			merged[source.ClusterID] = struct{}{}
		}
	}
	return plan
}
