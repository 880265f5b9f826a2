package index

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    Vector
		b    Vector
		want float64
	}{
		{name: "identical", a: Vector{1, 0, 0}, b: Vector{1, 0, 0}, want: 1},
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, want: 0},
		{name: "opposite", a: Vector{1, 0}, b: Vector{-1, 0}, want: -1},
		{name: "scaled", a: Vector{2, 0}, b: Vector{5, 0}, want: 1},
		{name: "dimension mismatch", a: Vector{1, 0}, b: Vector{1}, want: 0},
		{name: "zero vector", a: Vector{0, 0}, b: Vector{1, 0}, want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CosineSimilarity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityFromDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.18, 0.82},
		{1, 0},
		{1.5, 0},
		{2, 0},
		{-0.5, 1},
	}

	for _, tt := range tests {
		tt := tt
		if got := SimilarityFromDistance(tt.distance); !almostEqual(got, tt.want) {
			t.Fatalf("distance %v: got %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	v := Normalize(Vector{3, 4})
	if !almostEqual(v[0], 0.6) || !almostEqual(v[1], 0.8) {
		t.Fatalf("unexpected normalized vector %v", v)
	}

	zero := Normalize(Vector{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Fatalf("zero vector should be unchanged, got %v", zero)
	}
}

func TestMean(t *testing.T) {
	t.Parallel()

	got, err := Mean([]Vector{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got[0], 2) || !almostEqual(got[1], 3) {
		t.Fatalf("unexpected mean %v", got)
	}

	if _, err := Mean(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := Mean([]Vector{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for mismatched dimensions")
	}
}

func TestBlendIsRenormalized(t *testing.T) {
	t.Parallel()

	got, err := Blend(Vector{1, 0}, Vector{0, 1}, 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var norm float64
	for _, x := range got {
		norm += x * x
	}
	if !almostEqual(norm, 1) {
		t.Fatalf("blend is not unit length: %v (norm %v)", got, norm)
	}
	if got[0] <= got[1] {
		t.Fatalf("old component should dominate with weight 0.7: %v", got)
	}
}

func TestVectorLiteralRoundTrip(t *testing.T) {
	t.Parallel()

	in := Vector{0.25, -1, 3.5}
	literal, err := ToLiteral(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if literal != "[0.25,-1,3.5]" {
		t.Fatalf("unexpected literal %q", literal)
	}

	out, err := ParseLiteral(literal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip changed length: %v", out)
	}
	for i := range in {
		if !almostEqual(in[i], out[i]) {
			t.Fatalf("round trip changed element %d: %v vs %v", i, in[i], out[i])
		}
	}

	if _, err := ToLiteral(Vector{math.NaN()}); err == nil {
		t.Fatalf("expected error for NaN element")
	}
	if _, err := ParseLiteral("1,2,3"); err == nil {
		t.Fatalf("expected error for missing brackets")
	}
}
