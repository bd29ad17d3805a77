package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// NormalizeCaseNumber reduces a case number to uppercase letters and digits,
// "WP (C) 12/2024" and "wp-c-12-2024" normalize the same.
func NormalizeCaseNumber(s string) string {
	return strings.ToUpper(nonAlnum.ReplaceAllString(s, ""))
}

// Labeled is anything that can be resolved by its display label.
type Labeled interface {
	comparable
	Label() string
}

// ResolveLabel picks the candidate whose label best matches query, exact
// (normalized) matches win, then substring matches, then the highest
// Jaro-Winkler similarity above minSimilarity.
func ResolveLabel[T Labeled](query string, candidates []T, minSimilarity float64) (T, bool) {
	var zero T
	target := NormalizeName(query)
	if target == "" {
		return zero, false
	}

	for _, c := range candidates {
		if NormalizeName(c.Label()) == target {
			return c, true
		}
	}
	for _, c := range candidates {
		if strings.Contains(NormalizeName(c.Label()), target) {
			return c, true
		}
	}

	var best T
	var bestSimilarity float64
	for _, c := range candidates {
		sim := matchr.JaroWinkler(target, NormalizeName(c.Label()), false)
		if sim > bestSimilarity {
			bestSimilarity = sim
			best = c
		}
	}
	if bestSimilarity < minSimilarity {
		return zero, false
	}
	return best, true
}
