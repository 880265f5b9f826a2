package cluster

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// TitleCandidate is one member title considered for a cluster label.
type TitleCandidate struct {
	Title       string
	Credibility string
	PublishedAt *time.Time
}

var genericTerms = []string{"breaking", "update", "news alert", "developing"}

var capitalizedRunPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*\b`)

// ScoreTitle rates a candidate title. Longer, credible, recent titles with
// proper nouns score high; wire-service boilerplate terms score low.
func ScoreTitle(c TitleCandidate, now time.Time) float64 {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return 0
	}

	var score float64

	// Length is measured in characters, not bytes, so multibyte titles land
	// in the same buckets as ASCII ones.
	switch length := utf8.RuneCountInString(title); {
	case length >= 40 && length <= 100:
		score += 10
	case length >= 30 && length <= 39:
		score += 7
	case length >= 101 && length <= 140:
		score += 6
	case length < 30:
		score += 3
	default:
		score += 1
	}

	switch strings.ToLower(strings.TrimSpace(c.Credibility)) {
	case "high":
		score += 5
	case "medium":
		score += 2
	}

	if c.PublishedAt != nil {
		age := now.Sub(c.PublishedAt.UTC())
		switch {
		case age < 6*time.Hour:
			score += 3
		case age < 24*time.Hour:
			score += 2
		case age < 72*time.Hour:
			score += 1
		}
	}

	lower := strings.ToLower(title)
	for _, term := range genericTerms {
		score -= 5 * float64(strings.Count(lower, term))
	}

	properNounBonus := 1.5 * float64(len(capitalizedRunPattern.FindAllString(title, -1)))
	if properNounBonus > 8 {
		properNounBonus = 8
	}
	score += properNounBonus

	return score
}

// GenerateLabel picks the best-scoring title from the candidates. A winner
// must score above 5.0; otherwise the first title longer than 10 characters
// is used, and "Topic" is the final fallback.
func GenerateLabel(candidates []TitleCandidate, now time.Time) string {
	var (
		best      string
		bestScore = math.Inf(-1)
	)
	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}
		if score := ScoreTitle(c, now); score > bestScore {
			best = title
			bestScore = score
		}
	}
	if best != "" && bestScore > 5.0 {
		return best
	}

	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if len(title) > 10 {
			return title
		}
	}
	return "Topic"
}
