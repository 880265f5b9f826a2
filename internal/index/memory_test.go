package index

import (
	"context"
	"testing"
)

func TestMemoryNearestOrdersBySimilarity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	vectors := map[string]Vector{
		"a": {1, 0, 0},
		"b": {0.9, 0.1, 0},
		"c": {0, 1, 0},
		"d": {0, 0, 1},
	}
	for key, vec := range vectors {
		if err := m.Upsert(ctx, NamespaceArticles, key, vec, nil); err != nil {
			t.Fatalf("upsert %q: %v", key, err)
		}
	}

	matches, err := m.Nearest(ctx, NamespaceArticles, Vector{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Key != "a" || matches[1].Key != "b" {
		t.Fatalf("unexpected order: %+v", matches)
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Fatalf("matches not sorted by similarity: %+v", matches)
	}
}

func TestMemoryNamespacesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, NamespaceArticles, "x", Vector{1, 0}, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := m.Get(ctx, NamespaceClusters, []string{"x"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result from other namespace, got %v", got)
	}

	matches, err := m.Nearest(ctx, NamespaceClusters, Vector{1, 0}, 5)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches in empty namespace, got %v", matches)
	}
}

func TestMemoryGetCopiesVectors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, NamespaceArticles, "x", Vector{1, 0}, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := m.Get(ctx, NamespaceArticles, []string{"x", "missing"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only stored key, got %v", got)
	}

	got["x"][0] = 99
	again, err := m.Get(ctx, NamespaceArticles, []string{"x"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again["x"][0] != 1 {
		t.Fatalf("stored vector was mutated through a returned copy")
	}
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, NamespaceClusters, "c1", Vector{1, 0}, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := m.Delete(ctx, NamespaceClusters, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, NamespaceClusters, "c1"); err != nil {
		t.Fatalf("deleting a missing key should not error: %v", err)
	}

	got, err := m.Get(ctx, NamespaceClusters, []string{"c1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected key to be gone, got %v", got)
	}
}
