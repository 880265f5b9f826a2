package cluster

import (
	"strings"
	"unicode"
)

const maxKeywords = 10

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "against": {}, "been": {},
	"before": {}, "being": {}, "below": {}, "between": {}, "both": {},
	"could": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "from": {}, "further": {}, "have": {}, "having": {},
	"here": {}, "into": {}, "just": {}, "more": {}, "most": {},
	"only": {}, "other": {}, "over": {}, "same": {}, "should": {},
	"some": {}, "such": {}, "than": {}, "that": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "under": {}, "until": {},
	"very": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "will": {}, "with": {}, "would": {}, "your": {},
	"says": {}, "said": {}, "also": {}, "amid": {}, "among": {},
}

// ExtractKeywords returns up to ten lowercased tokens longer than three
// characters from the given texts, stopwords removed, in order of first
// occurrence.
func ExtractKeywords(texts ...string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, maxKeywords)

	for _, text := range texts {
		for _, token := range tokenize(text) {
			if len(keywords) == maxKeywords {
				return keywords
			}
			if len(token) <= 3 {
				continue
			}
			if _, stop := stopwords[token]; stop {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// KeywordsOverlap reports whether the two keyword sets share at least one
// word.
func KeywordsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, word := range a {
		set[word] = struct{}{}
	}
	for _, word := range b {
		if _, ok := set[word]; ok {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
