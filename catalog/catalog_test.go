package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const datasetJSON = `[
	{
		"id": "em.411", "t": "Foundations of System Design", "d": "Core design methods.",
		"e": [1, 0], "x": 1.5, "y": 2.5,
		"core": 1, "depth": 0, "elect": 0, "eng": 1, "mgmt": 1
	},
	{
		"id": "EM.422", "t": "Technology Strategy", "d": "Strategy for technology firms.",
		"e": [0, 1], "x": 3, "y": 4,
		"core": 0, "depth": 1, "elect": 0, "eng": 0, "mgmt": 1
	},
	{
		"id": "EM.423", "t": "Technology Strategy", "d": "Duplicate listing under another id.",
		"e": [0.5, 0.5], "x": 5, "y": 6,
		"core": 0, "depth": 0, "elect": 1, "eng": 1, "mgmt": 0
	}
]`

func writeDataset(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "full_embeddings.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadDataset(t *testing.T) {
	assert := assert.New(t)

	cat, err := Load(writeDataset(t, datasetJSON))
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	// duplicate title dropped, first occurrence wins
	assert.Equal(2, cat.Len())
	assert.Equal(2, cat.Dimension())

	subject, ok := cat.Get("EM.422")
	assert.True(ok)
	assert.Equal("Technology Strategy", subject.Title)
	assert.Equal("Strategy for technology firms.", subject.Description)

	_, ok = cat.Get("EM.423")
	assert.False(ok, "entry repeating an earlier title should be dropped")
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	cat, err := Load(writeDataset(t, datasetJSON))
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	subject, ok := cat.Get("em.411")
	assert.True(ok)
	assert.Equal("EM.411", subject.ID, "identifiers are canonicalized at load time")

	_, ok = cat.Get("EM.999")
	assert.False(ok)
}

func TestLoadMissingFile(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(err)
}

func TestLoadMalformedDataset(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(writeDataset(t, `{"not": "an array"}`))
	assert.Error(err)
}

func TestLoadMissingRequiredField(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(writeDataset(t, `[
		{"id": "EM.411", "t": "Foundations", "e": [1, 0], "x": 1, "y": 2}
	]`))

	assert.ErrorIs(err, ErrMissingField)
}

func TestNewRejectsMixedDimensions(t *testing.T) {
	assert := assert.New(t)

	_, err := New([]Subject{
		{ID: "A", Title: "a", Embedding: []float64{1, 0}},
		{ID: "B", Title: "b", Embedding: []float64{1, 0, 0}},
	})

	assert.ErrorIs(err, ErrDimensionMismatch)
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	assert := assert.New(t)

	_, err := New([]Subject{
		{ID: "em.411", Title: "a", Embedding: []float64{1, 0}},
		{ID: "EM.411", Title: "b", Embedding: []float64{0, 1}},
	})

	assert.ErrorIs(err, ErrDuplicateSubject)
}

func TestCategory(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		subject  Subject
		expected string
	}{
		{Subject{Core: true}, "Core"},
		{Subject{Depth: true, Eng: true, Mgmt: true}, "Eng & Mgmt Depth"},
		{Subject{Depth: true, Eng: true}, "Eng Depth"},
		{Subject{Depth: true, Mgmt: true}, "Mgmt Depth"},
		{Subject{Elective: true, Eng: true, Mgmt: true}, "Eng & Mgmt Elective"},
		{Subject{Elective: true, Eng: true}, "Eng Elective"},
		{Subject{Elective: true}, "Mgmt Elective"},
		{Subject{}, "Other"},
	}

	for _, test := range tests {
		assert.Equal(test.expected, test.subject.Category())
	}
}
