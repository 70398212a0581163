package subjectexplorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolSchemas(t *testing.T) {
	assert := assert.New(t)

	schemas := ToolSchemas()
	assert.Len(schemas, 3)

	assert.Equal("find_related_subjects", schemas[0].Name)
	assert.Equal("get_subject_info", schemas[1].Name)
	assert.Equal("highlight_subjects", schemas[2].Name)

	for _, schema := range schemas {
		assert.NotEmpty(schema.Description)
		assert.NotEmpty(schema.Parameters)
	}
}

func TestMCPTools(t *testing.T) {
	assert := assert.New(t)

	tools := MCPTools()
	assert.Len(tools, 3)
	assert.Equal("find_related_subjects", tools[0].Name)
}

func TestParseQueryArguments(t *testing.T) {
	assert := assert.New(t)

	query, err := parseQueryArguments(`{"query": "system architecture"}`)
	assert.NoError(err)
	assert.Equal("system architecture", query)

	_, err = parseQueryArguments(`{"subject_ids": ["EM.411"]}`)
	assert.ErrorIs(err, ErrInvalidToolArguments)

	_, err = parseQueryArguments(`find me subjects`)
	assert.ErrorIs(err, ErrInvalidToolArguments)

	_, err = parseQueryArguments(`{"query": 42}`)
	assert.ErrorIs(err, ErrInvalidToolArguments)
}

func TestParseSubjectIDsArguments(t *testing.T) {
	assert := assert.New(t)

	ids, err := parseSubjectIDsArguments(`{"subject_ids": ["EM.411", "em.422"]}`)
	assert.NoError(err)
	assert.Equal([]string{"EM.411", "em.422"}, ids)

	ids, err = parseSubjectIDsArguments(`{"subject_ids": []}`)
	assert.NoError(err)
	assert.Empty(ids)

	_, err = parseSubjectIDsArguments(`{}`)
	assert.ErrorIs(err, ErrInvalidToolArguments)

	_, err = parseSubjectIDsArguments(`{"subject_ids": "EM.411"}`)
	assert.ErrorIs(err, ErrInvalidToolArguments)
}
