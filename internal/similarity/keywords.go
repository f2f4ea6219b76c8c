// Package similarity links topics to each other through keyword overlap:
// related-topic discovery, research synthesis and cluster internal-link
// selection.
package similarity

import (
	"sort"
	"strings"
	"unicode"
)

// ExtractKeywords normalizes a title into its keyword set: lowercased,
// punctuation stripped, stop-words removed, tokens of two characters or
// fewer discarded.
func ExtractKeywords(title string) map[string]bool {
	keywords := make(map[string]bool)

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)

	for _, token := range strings.Fields(cleaned) {
		if len([]rune(token)) <= 2 {
			continue
		}
		if stopwords[token] {
			continue
		}
		keywords[token] = true
	}

	return keywords
}

// Jaccard returns |A∩B| / |A∪B|, and 0 when either set is empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// SharedKeywords returns the intersection of two keyword sets in stable
// lexical order.
func SharedKeywords(a, b map[string]bool) []string {
	var shared []string
	for k := range a {
		if b[k] {
			shared = append(shared, k)
		}
	}
	sort.Strings(shared)
	return shared
}

// stopwords covers English and Spanish; titles in both markets flow through
// the same pipeline.
var stopwords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "how": true, "its": true, "your": true, "what": true,
	"when": true, "where": true, "which": true, "with": true, "will": true,
	"why": true, "this": true, "that": true, "these": true, "those": true,
	"from": true, "they": true, "been": true, "have": true, "more": true,
	"best": true, "guide": true, "tips": true, "into": true, "than": true,
	"should": true, "about": true, "does": true,
	// Spanish
	"los": true, "las": true, "una": true, "unos": true, "unas": true,
	"del": true, "por": true, "para": true, "con": true, "sin": true,
	"que": true, "como": true, "cuando": true, "donde": true, "sobre": true,
	"entre": true, "desde": true, "hasta": true, "mejores": true,
	"guia": true, "consejos": true, "esta": true, "este": true, "estos": true,
	"estas": true, "ser": true, "son": true, "mas": true, "muy": true,
}
