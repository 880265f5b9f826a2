package cluster

import (
	"topicwire/internal/db"
	"topicwire/internal/index"
)

// GroupInput is one unassigned article with its embedding, ready for
// grouping.
type GroupInput struct {
	Article   db.ClusteringArticle
	Embedding index.Vector
}

// GroupMember is an article placed in a group with its similarity to the
// group's seed. The seed itself carries similarity 1.0.
type GroupMember struct {
	Article    db.ClusteringArticle
	Embedding  index.Vector
	Similarity float64
}

// Group is a disjoint set of mutually relevant articles anchored on a seed.
type Group struct {
	Seed           db.ClusteringArticle
	Members        []GroupMember
	Representative index.Vector
	Keywords       []string
}

// BuildGroups partitions the batch into seed-anchored groups. Items join a
// group only when similar to that group's seed, never transitively through
// another member, which keeps unrelated stories from chaining together.
// Input order is preserved: the first remaining item always seeds the next
// group, so callers pass articles most-recent-first.
func BuildGroups(items []GroupInput, threshold float64) []Group {
	remaining := make([]GroupInput, 0, len(items))
	for _, item := range items {
		if len(item.Embedding) == 0 {
			continue
		}
		remaining = append(remaining, item)
	}

	var groups []Group
	for len(remaining) > 0 {
		seed := remaining[0]
		rest := remaining[1:]

		group := Group{
			Seed:           seed.Article,
			Representative: seed.Embedding,
			Keywords:       ExtractKeywords(seed.Article.Title, seed.Article.Summary),
			Members: []GroupMember{{
				Article:    seed.Article,
				Embedding:  seed.Embedding,
				Similarity: 1.0,
			}},
		}

		next := remaining[:0]
		for _, item := range rest {
			sim := index.CosineSimilarity(seed.Embedding, item.Embedding)
			if sim >= threshold {
				group.Members = append(group.Members, GroupMember{
					Article:    item.Article,
					Embedding:  item.Embedding,
					Similarity: clampSimilarity(sim),
				})
				continue
			}
			next = append(next, item)
		}

		groups = append(groups, group)
		remaining = next
	}
	return groups
}

func clampSimilarity(sim float64) float64 {
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
