package db

import (
	"strings"
	"testing"
)

func TestListUnassignedArticlesRequiresStoredEmbedding(t *testing.T) {
	t.Parallel()

	// A pending article without a stored embedding must not be selected,
	// otherwise it occupies a batch slot on every run and starves the job.
	for _, want := range []string{
		"a.cluster_status = 'pending'",
		"news.index_vectors",
		"v.namespace = 'articles'",
		"'article_' || a.article_id",
	} {
		if !strings.Contains(listUnassignedArticlesSQL, want) {
			t.Fatalf("unassigned-article query is missing %q", want)
		}
	}
}

func TestUpsertHourlyCountsTracksDistinctSources(t *testing.T) {
	t.Parallel()

	for _, want := range []string{
		"COUNT(DISTINCT a.source)",
		"distinct_sources = EXCLUDED.distinct_sources",
	} {
		if !strings.Contains(upsertHourlyCountsSQL, want) {
			t.Fatalf("hourly upsert is missing %q", want)
		}
	}
}
