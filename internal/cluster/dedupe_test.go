package cluster

import "testing"

const wireText = "The central bank raised its key interest rate by a quarter point on Thursday, " +
	"citing persistent inflation pressure across the services sector."

func TestGroupNearDuplicatesFindsSyndicatedCopies(t *testing.T) {
	t.Parallel()

	groups := GroupNearDuplicates([]DedupeItem{
		{ID: 1, Text: wireText, Language: "en"},
		{ID: 2, Text: wireText, Language: "en"},
		{ID: 3, Text: "Local football club wins regional championship after penalty shootout drama.", Language: "en"},
	}, 0.85)

	if len(groups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %v", groups)
	}
	dups, ok := groups[1]
	if !ok || len(dups) != 1 || dups[0] != 2 {
		t.Fatalf("expected article 2 folded into article 1, got %v", groups)
	}
}

func TestGroupNearDuplicatesRespectsLanguageGate(t *testing.T) {
	t.Parallel()

	// Identical bytes but declared in different languages must not pair up.
	groups := GroupNearDuplicates([]DedupeItem{
		{ID: 1, Text: wireText, Language: "en"},
		{ID: 2, Text: wireText, Language: "de"},
	}, 0.85)

	if len(groups) != 0 {
		t.Fatalf("expected no groups across languages, got %v", groups)
	}
}

func TestGroupNearDuplicatesEmptyAndTinyInput(t *testing.T) {
	t.Parallel()

	if groups := GroupNearDuplicates(nil, 0.85); len(groups) != 0 {
		t.Fatalf("expected empty result for empty batch, got %v", groups)
	}
	if groups := GroupNearDuplicates([]DedupeItem{{ID: 1, Text: wireText, Language: "en"}}, 0.85); len(groups) != 0 {
		t.Fatalf("expected empty result for single-item batch, got %v", groups)
	}

	// Texts shorter than one shingle never participate.
	groups := GroupNearDuplicates([]DedupeItem{
		{ID: 1, Text: "abc", Language: "en"},
		{ID: 2, Text: "abc", Language: "en"},
	}, 0.85)
	if len(groups) != 0 {
		t.Fatalf("expected short texts to be skipped, got %v", groups)
	}
}

func TestSignatureStability(t *testing.T) {
	t.Parallel()

	a, ok := ComputeSignature(wireText)
	if !ok {
		t.Fatalf("expected a signature")
	}
	b, ok := ComputeSignature(wireText)
	if !ok {
		t.Fatalf("expected a signature")
	}
	if got := EstimateJaccard(a, b); got != 1 {
		t.Fatalf("identical texts must have identical signatures, got %v", got)
	}

	// Whitespace and case normalization keep syndicated copies aligned.
	c, ok := ComputeSignature("  THE Central   Bank raised its key interest rate by a quarter point on Thursday, citing persistent inflation pressure across the services sector.")
	if !ok {
		t.Fatalf("expected a signature")
	}
	if got := EstimateJaccard(a, c); got < 0.9 {
		t.Fatalf("normalized variants should stay near-identical, got %v", got)
	}
}
