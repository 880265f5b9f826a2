package cluster

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	got := ExtractKeywords(
		"Bank of England Raises Interest Rates",
		"Central bank raises rates again to fight inflation",
	)
	want := []string{"bank", "england", "raises", "interest", "rates", "central", "fight", "inflation"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractKeywordsSkipsShortTokensAndStopwords(t *testing.T) {
	t.Parallel()

	got := ExtractKeywords("The cat sat there while they said that")
	if len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
}

func TestExtractKeywordsCapsAtTen(t *testing.T) {
	t.Parallel()

	got := ExtractKeywords("alpha bravo charlie delta echoes foxtrot golfing hotels india juliett kilos limas")
	if len(got) != maxKeywords {
		t.Fatalf("expected %d keywords, got %d: %v", maxKeywords, len(got), got)
	}
	if got[0] != "alpha" || got[9] != "juliett" {
		t.Fatalf("first-occurrence order not preserved: %v", got)
	}
}

func TestKeywordsOverlap(t *testing.T) {
	t.Parallel()

	if !KeywordsOverlap([]string{"election", "senate"}, []string{"senate", "vote"}) {
		t.Fatalf("expected overlap")
	}
	if KeywordsOverlap([]string{"election"}, []string{"weather"}) {
		t.Fatalf("expected no overlap")
	}
	if KeywordsOverlap(nil, []string{"weather"}) {
		t.Fatalf("empty set never overlaps")
	}
}
