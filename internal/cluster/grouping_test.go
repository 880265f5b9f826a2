package cluster

import (
	"testing"

	"topicwire/internal/db"
	"topicwire/internal/index"
)

func groupInput(id int64, title string, embedding index.Vector) GroupInput {
	return GroupInput{
		Article: db.ClusteringArticle{
			ArticleID: id,
			Title:     title,
		},
		Embedding: embedding,
	}
}

func TestBuildGroupsDoesNotChain(t *testing.T) {
	t.Parallel()

	// e1 and e2 are similar (0.90). e3 is below threshold against the seed
	// e1 (0.75) but above it against e2 (0.96). Anti-chaining requires e3 to
	// form its own group anyway.
	e1 := index.Vector{1, 0}
	e2 := index.Vector{0.9, 0.43589}
	e3 := index.Vector{0.75, 0.66144}

	if sim := index.CosineSimilarity(e2, e3); sim < 0.82 {
		t.Fatalf("test setup: sim(e2,e3)=%v should exceed the threshold", sim)
	}

	groups := BuildGroups([]GroupInput{
		groupInput(1, "seed", e1),
		groupInput(2, "close to seed", e2),
		groupInput(3, "close to member only", e3),
	}, 0.82)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	first, second := groups[0], groups[1]

	if first.Seed.ArticleID != 1 || len(first.Members) != 2 {
		t.Fatalf("unexpected first group: seed %d, %d members", first.Seed.ArticleID, len(first.Members))
	}
	if first.Members[0].Article.ArticleID != 1 || first.Members[1].Article.ArticleID != 2 {
		t.Fatalf("unexpected first group members: %+v", first.Members)
	}
	if second.Seed.ArticleID != 3 || len(second.Members) != 1 {
		t.Fatalf("unexpected second group: seed %d, %d members", second.Seed.ArticleID, len(second.Members))
	}
}

func TestBuildGroupsSimilarityBookkeeping(t *testing.T) {
	t.Parallel()

	e1 := index.Vector{1, 0}
	e2 := index.Vector{0.9, 0.43589}

	groups := BuildGroups([]GroupInput{
		groupInput(1, "seed", e1),
		groupInput(2, "member", e2),
	}, 0.82)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	group := groups[0]

	if group.Members[0].Similarity != 1.0 {
		t.Fatalf("seed similarity must be 1.0, got %v", group.Members[0].Similarity)
	}
	member := group.Members[1].Similarity
	if member < 0.89 || member > 0.91 {
		t.Fatalf("unexpected member similarity %v", member)
	}
	for _, m := range group.Members {
		if m.Similarity < 0 || m.Similarity > 1 {
			t.Fatalf("similarity out of range: %v", m.Similarity)
		}
	}
	if len(group.Representative) != len(e1) || group.Representative[0] != e1[0] {
		t.Fatalf("representative vector must be the seed embedding, got %v", group.Representative)
	}
}

func TestBuildGroupsKeywordsComeFromSeed(t *testing.T) {
	t.Parallel()

	groups := BuildGroups([]GroupInput{
		{
			Article: db.ClusteringArticle{
				ArticleID: 1,
				Title:     "Volcano Eruption Forces Evacuation",
				Summary:   "Thousands flee the island volcano",
			},
			Embedding: index.Vector{1, 0},
		},
	}, 0.82)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	kw := groups[0].Keywords
	if len(kw) == 0 || kw[0] != "volcano" {
		t.Fatalf("unexpected keywords %v", kw)
	}
}

func TestBuildGroupsSkipsMissingEmbeddings(t *testing.T) {
	t.Parallel()

	groups := BuildGroups([]GroupInput{
		groupInput(1, "no embedding", nil),
		groupInput(2, "has embedding", index.Vector{1, 0}),
	}, 0.82)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Seed.ArticleID != 2 {
		t.Fatalf("expected article 2 to seed the group, got %d", groups[0].Seed.ArticleID)
	}

	if groups := BuildGroups(nil, 0.82); len(groups) != 0 {
		t.Fatalf("expected no groups for empty input, got %d", len(groups))
	}
}
