package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert := assert.New(t)

	a := []float64{1, 2, 3}
	b := []float64{-2, 0.5, 1}

	assert.Equal(CosineSimilarity(a, b), CosineSimilarity(b, a), "symmetric")
	assert.InDelta(1.0, CosineSimilarity(a, a), 1e-9, "similarity to self is 1")
	assert.InDelta(-1.0, CosineSimilarity(a, []float64{-1, -2, -3}), 1e-9)

	score := CosineSimilarity(a, b)
	assert.GreaterOrEqual(score, -1.0)
	assert.LessOrEqual(score, 1.0)
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	assert := assert.New(t)

	assert.Zero(CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Zero(CosineSimilarity([]float64{1, 1}, []float64{0, 0}))
	assert.Zero(CosineSimilarity(nil, nil))
	assert.Zero(CosineSimilarity([]float64{1}, []float64{1, 2}))
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	cat, err := New([]Subject{
		{ID: "A", Title: "Alpha", Description: "first", Embedding: []float64{1, 0}},
		{ID: "B", Title: "Beta", Description: "second", Embedding: []float64{0, 1}},
		{ID: "C", Title: "Gamma", Description: "third", Embedding: []float64{1, 0}},
		{ID: "D", Title: "Delta", Description: "fourth", Embedding: []float64{0.6, 0.8}},
	})
	if err != nil {
		t.Fatal(err)
	}

	return cat
}

func TestSearchThresholdAndOrder(t *testing.T) {
	assert := assert.New(t)

	cat := testCatalog(t)

	matches, err := cat.Search([]float64{0.9, 0.1}, DefaultThreshold, DefaultTopN)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	// B scores ~0.110, below threshold
	assert.Len(matches, 3)

	for i, match := range matches {
		assert.GreaterOrEqual(match.Score, DefaultThreshold)

		if i > 0 {
			assert.LessOrEqual(match.Score, matches[i-1].Score, "sorted non-increasing")
		}
	}

	// A and C tie exactly; dataset order breaks the tie
	assert.Equal("A", matches[0].Subject.ID)
	assert.Equal("C", matches[1].Subject.ID)
	assert.Equal("D", matches[2].Subject.ID)
}

func TestSearchTruncatesToTopN(t *testing.T) {
	assert := assert.New(t)

	cat := testCatalog(t)

	matches, err := cat.Search([]float64{1, 1}, 0.1, 2)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Len(matches, 2)
}

func TestSearchNoneQualify(t *testing.T) {
	assert := assert.New(t)

	cat := testCatalog(t)

	matches, err := cat.Search([]float64{-1, -1}, DefaultThreshold, DefaultTopN)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Empty(matches)
}

func TestSearchDimensionMismatch(t *testing.T) {
	assert := assert.New(t)

	cat := testCatalog(t)

	_, err := cat.Search([]float64{1, 0, 0}, DefaultThreshold, DefaultTopN)
	assert.ErrorIs(err, ErrDimensionMismatch)
}
