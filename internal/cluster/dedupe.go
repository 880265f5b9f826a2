package cluster

import (
	"hash/fnv"
	"math"
	"strings"
)

const (
	minhashFunctions = 128
	shingleSize      = 5
)

// minhashSeeds parameterizes the hash family as h_i(x) = a_i*x + b_i. The
// values are fixed so signatures are stable across runs.
var minhashSeeds = buildMinhashSeeds()

type minhashSeed struct {
	a uint64
	b uint64
}

func buildMinhashSeeds() []minhashSeed {
	// Splitmix64 sequence from a fixed state.
	seeds := make([]minhashSeed, minhashFunctions)
	state := uint64(0x9e3779b97f4a7c15)
	next := func() uint64 {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}
	for i := range seeds {
		seeds[i] = minhashSeed{a: next() | 1, b: next()}
	}
	return seeds
}

// DedupeItem is one article text considered for near-duplicate grouping.
type DedupeItem struct {
	ID       int64
	Text     string
	Language string
}

// Signature is a MinHash signature over character shingles.
type Signature [minhashFunctions]uint64

// ComputeSignature builds the MinHash signature of a text. Texts shorter
// than one shingle produce a zero signature that never matches anything.
func ComputeSignature(text string) (Signature, bool) {
	var sig Signature

	runes := []rune(normalizeForShingles(text))
	if len(runes) < shingleSize {
		return sig, false
	}

	for i := range sig {
		sig[i] = math.MaxUint64
	}

	for i := 0; i+shingleSize <= len(runes); i++ {
		h := fnv.New64a()
		_, _ = h.Write([]byte(string(runes[i : i+shingleSize])))
		base := h.Sum64()
		for j, seed := range minhashSeeds {
			if v := seed.a*base + seed.b; v < sig[j] {
				sig[j] = v
			}
		}
	}
	return sig, true
}

// EstimateJaccard approximates the Jaccard similarity of the shingle sets
// behind two signatures.
func EstimateJaccard(a, b Signature) float64 {
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(minhashFunctions)
}

// GroupNearDuplicates maps each representative article id to the ids of its
// near-identical texts. Items keep batch order, so the representative is the
// most recent member. Articles in different languages never pair up. The
// result is advisory: an empty batch or all-unique batch yields an empty map.
func GroupNearDuplicates(items []DedupeItem, threshold float64) map[int64][]int64 {
	if len(items) < 2 {
		return map[int64][]int64{}
	}

	type prepared struct {
		id       int64
		language string
		sig      Signature
	}

	candidates := make([]prepared, 0, len(items))
	for _, item := range items {
		sig, ok := ComputeSignature(item.Text)
		if !ok {
			continue
		}
		language := strings.ToLower(strings.TrimSpace(item.Language))
		if language == "" || language == "und" {
			language = DetectLanguage(item.Text)
		}
		candidates = append(candidates, prepared{id: item.ID, language: language, sig: sig})
	}

	groups := make(map[int64][]int64)
	taken := make(map[int64]struct{})
	for i := 0; i < len(candidates); i++ {
		rep := candidates[i]
		if _, ok := taken[rep.id]; ok {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			other := candidates[j]
			if _, ok := taken[other.id]; ok {
				continue
			}
			if rep.language != "" && other.language != "" && rep.language != other.language {
				continue
			}
			if EstimateJaccard(rep.sig, other.sig) >= threshold {
				groups[rep.id] = append(groups[rep.id], other.id)
				taken[other.id] = struct{}{}
			}
		}
	}
	return groups
}

func normalizeForShingles(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
