// Package index provides vector storage and nearest-neighbor lookup for
// article embeddings and cluster centroids. Both live in one store under
// separate namespaces.
package index

import "context"

const (
	NamespaceArticles = "articles"
	NamespaceClusters = "clusters"
)

// Vector is an embedding. Vectors are compared with cosine similarity.
type Vector []float64

// Match is one nearest-neighbor result.
type Match struct {
	Key        string
	Similarity float64
}

type Index interface {
	// Get returns the stored vectors for the given keys. Missing keys are
	// absent from the result, not an error.
	Get(ctx context.Context, namespace string, keys []string) (map[string]Vector, error)

	// Nearest returns up to k matches ordered by similarity, highest first.
	Nearest(ctx context.Context, namespace string, vector Vector, k int) ([]Match, error)

	// Upsert stores or replaces one vector.
	Upsert(ctx context.Context, namespace, key string, vector Vector, metadata map[string]any) error

	// Delete removes one vector. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error
}
