// Package embedding provides per-category static word-vector tables and the
// store that loads and caches them.
package embedding

import (
	"fmt"
	"math"
	"sort"

	"yttitle/internal/models"
)

// Table is a pre-trained word -> vector lookup. Words keep their load order.
type Table struct {
	words   []string
	index   map[string]int
	vectors [][]float32
	unit    [][]float32 // unit-normalized copies used for similarity
	dim     int
}

// NewTable builds a table. Every vector must have the same non-zero length and
// finite components, and words must be unique.
func NewTable(words []string, vectors [][]float32) (*Table, error) {
	if len(words) != len(vectors) {
		return nil, fmt.Errorf("table has %d words but %d vectors", len(words), len(vectors))
	}
	t := &Table{
		words:   make([]string, len(words)),
		index:   make(map[string]int, len(words)),
		vectors: make([][]float32, len(vectors)),
		unit:    make([][]float32, len(vectors)),
	}
	for i, w := range words {
		if _, dup := t.index[w]; dup {
			return nil, fmt.Errorf("duplicate word %q at row %d", w, i)
		}
		if i == 0 {
			t.dim = len(vectors[i])
			if t.dim == 0 {
				return nil, fmt.Errorf("word %q has an empty vector", w)
			}
		} else if len(vectors[i]) != t.dim {
			return nil, fmt.Errorf("word %q has dimension %d, expected %d", w, len(vectors[i]), t.dim)
		}
		for j, x := range vectors[i] {
			if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("word %q has a non-finite component at %d", w, j)
			}
		}
		t.words[i] = w
		t.index[w] = i
		t.vectors[i] = vectors[i]
		t.unit[i] = unitVector(vectors[i])
	}
	return t, nil
}

func unitVector(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Len returns the vocabulary size.
func (t *Table) Len() int { return len(t.words) }

// Dim returns the vector length.
func (t *Table) Dim() int { return t.dim }

// Words returns the vocabulary in load order.
func (t *Table) Words() []string {
	out := make([]string, len(t.words))
	copy(out, t.words)
	return out
}

// Has reports whether word is in the vocabulary.
func (t *Table) Has(word string) bool {
	_, ok := t.index[word]
	return ok
}

// Vector returns the raw vector for word.
func (t *Table) Vector(word string) ([]float32, bool) {
	i, ok := t.index[word]
	if !ok {
		return nil, false
	}
	return t.vectors[i], true
}

// Known returns the subset of words present in the table, in input order.
func (t *Table) Known(words []string) []string {
	var out []string
	for _, w := range words {
		if t.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// MostSimilar returns up to topn words closest to the mean of the positive
// vectors minus the negative ones, by cosine similarity, best first. Input
// words are never returned.
func (t *Table) MostSimilar(positive, negative []string, topn int) ([]models.KeywordScore, error) {
	if len(positive) == 0 && len(negative) == 0 {
		return nil, fmt.Errorf("%w: no positive or negative words given", models.ErrInvalidKeyword)
	}
	if topn <= 0 {
		return []models.KeywordScore{}, nil
	}

	mean := make([]float64, t.dim)
	exclude := make(map[int]struct{}, len(positive)+len(negative))
	add := func(words []string, weight float64) error {
		for _, w := range words {
			i, ok := t.index[w]
			if !ok {
				return fmt.Errorf("%w: %q not present in vocabulary", models.ErrInvalidKeyword, w)
			}
			exclude[i] = struct{}{}
			for d, x := range t.unit[i] {
				mean[d] += weight * float64(x)
			}
		}
		return nil
	}
	if err := add(positive, 1); err != nil {
		return nil, err
	}
	if err := add(negative, -1); err != nil {
		return nil, err
	}

	var norm float64
	for _, x := range mean {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for d := range mean {
			mean[d] /= norm
		}
	}

	results := make([]models.KeywordScore, 0, len(t.words))
	for i, w := range t.words {
		if _, skip := exclude[i]; skip {
			continue
		}
		var dot float64
		for d, x := range t.unit[i] {
			dot += float64(x) * mean[d]
		}
		results = append(results, models.KeywordScore{Keyword: w, Score: dot})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topn {
		results = results[:topn]
	}
	return results, nil
}
