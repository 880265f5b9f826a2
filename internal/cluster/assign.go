package cluster

// Candidate is an existing active cluster considered for a group.
type Candidate struct {
	ClusterID  int64
	Similarity float64
	Keywords   []string
}

// MatchDecision is the outcome of candidate selection for one group.
type MatchDecision struct {
	Matched    bool
	ClusterID  int64
	Similarity float64
}

// SelectCluster picks the best matching candidate for a group. A candidate
// matches when its centroid similarity reaches the base threshold and either
// side lacks keywords, the keyword sets overlap, or the similarity reaches
// the high threshold, which overrides the keyword gate. Candidates are
// assumed ordered by similarity, best first.
func SelectCluster(groupKeywords []string, candidates []Candidate, threshold, highThreshold float64) MatchDecision {
	for _, c := range candidates {
		if c.Similarity < threshold {
			continue
		}
		if !candidateMatches(groupKeywords, c, highThreshold) {
			continue
		}
		return MatchDecision{
			Matched:    true,
			ClusterID:  c.ClusterID,
			Similarity: c.Similarity,
		}
	}
	return MatchDecision{}
}

func candidateMatches(groupKeywords []string, c Candidate, highThreshold float64) bool {
	if c.Similarity >= highThreshold {
		return true
	}
	if len(groupKeywords) == 0 || len(c.Keywords) == 0 {
		return true
	}
	return KeywordsOverlap(groupKeywords, c.Keywords)
}
