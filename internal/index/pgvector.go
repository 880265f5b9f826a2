package index

import (
	"context"
	"encoding/json"
	"fmt"

	"topicwire/internal/db"
)

const defaultSearchEF = 80

// PgVector is the production Index backed by the news.index_vectors table.
type PgVector struct {
	pool *db.Pool
}

func NewPgVector(pool *db.Pool) (*PgVector, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PgVector{pool: pool}, nil
}

func (s *PgVector) Get(ctx context.Context, namespace string, keys []string) (map[string]Vector, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("index store is not initialized")
	}
	if len(keys) == 0 {
		return map[string]Vector{}, nil
	}

	const q = `
SELECT vector_key, embedding::text
FROM news.index_vectors
WHERE namespace = $1
  AND vector_key = ANY($2)
`

	rows, err := s.pool.Query(ctx, q, namespace, keys)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Vector, len(keys))
	for rows.Next() {
		var (
			key     string
			literal string
		)
		if err := rows.Scan(&key, &literal); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		vec, err := ParseLiteral(literal)
		if err != nil {
			return nil, fmt.Errorf("parse vector for key %q: %w", key, err)
		}
		out[key] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector rows: %w", err)
	}
	return out, nil
}

func (s *PgVector) Nearest(ctx context.Context, namespace string, vector Vector, k int) ([]Match, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("index store is not initialized")
	}
	if k <= 0 {
		k = 5
	}

	literal, err := ToLiteral(vector)
	if err != nil {
		return nil, fmt.Errorf("render query vector: %w", err)
	}

	// SET LOCAL scopes ef_search to this transaction only.
	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin nearest-neighbor tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", defaultSearchEF)); err != nil {
		return nil, fmt.Errorf("set hnsw.ef_search: %w", err)
	}

	const q = `
SELECT
	vector_key,
	(embedding <=> $1::vector)::DOUBLE PRECISION AS distance
FROM news.index_vectors
WHERE namespace = $2
ORDER BY embedding <=> $1::vector ASC
LIMIT $3
`

	rows, err := tx.Query(ctx, q, literal, namespace, k)
	if err != nil {
		return nil, fmt.Errorf("query nearest vectors: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, k)
	for rows.Next() {
		var (
			key      string
			distance float64
		)
		if err := rows.Scan(&key, &distance); err != nil {
			return nil, fmt.Errorf("scan nearest vector row: %w", err)
		}
		matches = append(matches, Match{Key: key, Similarity: SimilarityFromDistance(distance)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearest vector rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit nearest-neighbor tx: %w", err)
	}
	return matches, nil
}

func (s *PgVector) Upsert(ctx context.Context, namespace, key string, vector Vector, metadata map[string]any) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("index store is not initialized")
	}

	literal, err := ToLiteral(vector)
	if err != nil {
		return fmt.Errorf("render vector for key %q: %w", key, err)
	}

	var meta []byte
	if metadata != nil {
		meta, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for key %q: %w", key, err)
		}
	}

	const q = `
INSERT INTO news.index_vectors (namespace, vector_key, embedding, metadata, updated_at)
VALUES ($1, $2, $3::vector, $4, now())
ON CONFLICT (namespace, vector_key) DO UPDATE
SET embedding = EXCLUDED.embedding,
    metadata = EXCLUDED.metadata,
    updated_at = now()
`

	if _, err := s.pool.Exec(ctx, q, namespace, key, literal, meta); err != nil {
		return fmt.Errorf("upsert vector %q: %w", key, err)
	}
	return nil
}

func (s *PgVector) Delete(ctx context.Context, namespace, key string) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("index store is not initialized")
	}

	const q = `DELETE FROM news.index_vectors WHERE namespace = $1 AND vector_key = $2`
	if _, err := s.pool.Exec(ctx, q, namespace, key); err != nil {
		return fmt.Errorf("delete vector %q: %w", key, err)
	}
	return nil
}
