package index

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CosineSimilarity returns the cosine of the angle between a and b, or 0 for
// mismatched or zero-magnitude inputs.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SimilarityFromDistance converts a cosine distance (0..2) to a similarity
// clamped to [0, 1].
func SimilarityFromDistance(distance float64) float64 {
	sim := 1 - distance
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// Normalize returns v scaled to unit length. Zero vectors are returned as is.
func Normalize(v Vector) Vector {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Mean returns the element-wise mean of the given vectors. All vectors must
// share one dimensionality.
func Mean(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("mean of zero vectors")
	}
	dims := len(vectors[0])
	out := make(Vector, dims)
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), dims)
		}
		for j, x := range v {
			out[j] += x
		}
	}
	n := float64(len(vectors))
	for j := range out {
		out[j] /= n
	}
	return out, nil
}

// Blend combines an existing centroid with a batch mean as
// oldWeight*old + newWeight*mean, renormalized to unit length.
func Blend(old, mean Vector, oldWeight, newWeight float64) (Vector, error) {
	if len(old) != len(mean) || len(old) == 0 {
		return nil, fmt.Errorf("blend dimension mismatch: %d vs %d", len(old), len(mean))
	}
	out := make(Vector, len(old))
	for i := range old {
		out[i] = oldWeight*old[i] + newWeight*mean[i]
	}
	return Normalize(out), nil
}

// ToLiteral renders v as a pgvector literal.
func ToLiteral(v Vector) (string, error) {
	if len(v) == 0 {
		return "", fmt.Errorf("empty vector")
	}

	var builder strings.Builder
	builder.Grow(len(v) * 8)
	builder.WriteByte('[')
	for i, value := range v {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return "", fmt.Errorf("vector has non-finite value at index %d", i)
		}
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
	}
	builder.WriteByte(']')
	return builder.String(), nil
}

// ParseLiteral parses a pgvector literal back into a Vector.
func ParseLiteral(s string) (Vector, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal")
	}
	body := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("empty vector literal")
	}
	parts := strings.Split(body, ",")
	out := make(Vector, 0, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %d: %w", i, err)
		}
		out = append(out, value)
	}
	return out, nil
}
