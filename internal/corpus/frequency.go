package corpus

import (
	"sort"
	"strings"

	"yttitle/internal/models"
)

// TermFrequencies counts whitespace tokens across texts, most frequent first
// (ties alphabetical). limit <= 0 returns every term.
func TermFrequencies(texts []string, limit int) []models.TermCount {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range strings.Fields(text) {
			counts[tok]++
		}
	}

	terms := make([]models.TermCount, 0, len(counts))
	for term, n := range counts {
		terms = append(terms, models.TermCount{Term: term, Count: n})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})

	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}
