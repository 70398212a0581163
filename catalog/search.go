package catalog

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultThreshold = 0.42
	DefaultTopN      = 10
)

// Match pairs a subject with its similarity score for one query.
type Match struct {
	Subject Subject `json:"subject"`
	Score   float64 `json:"score"`
}

// CosineSimilarity returns dot(a,b) / (||a|| * ||b||). A zero-magnitude
// or mismatched vector yields 0 instead of dividing by zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Search scores every subject against the query vector, keeps scores at
// or above threshold, and returns at most topN matches ordered by
// descending score. Ties keep dataset order.
func (c *Catalog) Search(query []float64, threshold float64, topN int) ([]Match, error) {
	if len(query) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, dataset has %d",
			ErrDimensionMismatch, len(query), c.dimension)
	}

	matches := make([]Match, 0)
	for _, subject := range c.subjects {
		score := CosineSimilarity(subject.Embedding, query)
		if score >= threshold {
			matches = append(matches, Match{
				Subject: subject,
				Score:   score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topN > 0 && len(matches) > topN {
		matches = matches[:topN]
	}

	return matches, nil
}
