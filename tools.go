package subjectexplorer

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/subjectexplorer/llm"
)

// ToolName is the closed set of operations the model may invoke.
type ToolName string

const (
	ToolFindRelatedSubjects ToolName = "find_related_subjects"
	ToolGetSubjectInfo      ToolName = "get_subject_info"
	ToolHighlightSubjects   ToolName = "highlight_subjects"
)

const (
	findRelatedSubjectsDescription = "Get the list of subjects related to the user query"
	getSubjectInfoDescription      = "Get subject info based on subject ids. Call for multiple subjects"
	highlightSubjectsDescription   = "Highlight subjects in the graph. Call once at a time for multiple subjects"
)

// The parameter declarations are part of the wire contract with the
// chat-completion service and must match the registry exactly.
var (
	findRelatedSubjectsSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "user query related to subject title or description or content"
			}
		},
		"required": ["query"]
	}`)

	subjectIDsSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"subject_ids": {
				"type": "array",
				"items": {
					"type": "string",
					"description": "subject id"
				},
				"description": "array of subject ids"
			}
		},
		"required": ["subject_ids"]
	}`)
)

// ToolSchemas declares the registry to the chat-completion service.
func ToolSchemas() []llm.Tool {
	return []llm.Tool{
		{
			Name:        string(ToolFindRelatedSubjects),
			Description: findRelatedSubjectsDescription,
			Parameters:  findRelatedSubjectsSchema,
		},
		{
			Name:        string(ToolGetSubjectInfo),
			Description: getSubjectInfoDescription,
			Parameters:  subjectIDsSchema,
		},
		{
			Name:        string(ToolHighlightSubjects),
			Description: highlightSubjectsDescription,
			Parameters:  subjectIDsSchema,
		},
	}
}

// MCPTools exposes the same registry in MCP form.
func MCPTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewToolWithRawSchema(string(ToolFindRelatedSubjects), findRelatedSubjectsDescription, findRelatedSubjectsSchema),
		mcp.NewToolWithRawSchema(string(ToolGetSubjectInfo), getSubjectInfoDescription, subjectIDsSchema),
		mcp.NewToolWithRawSchema(string(ToolHighlightSubjects), highlightSubjectsDescription, subjectIDsSchema),
	}
}

// parseQueryArguments validates a model-supplied argument payload for
// find_related_subjects. The payload is parsed strictly as JSON, never
// evaluated.
func parseQueryArguments(arguments string) (string, error) {
	var args struct {
		Query *string `json:"query"`
	}

	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToolArguments, err)
	}

	if args.Query == nil {
		return "", fmt.Errorf("%w: missing field query", ErrInvalidToolArguments)
	}

	return *args.Query, nil
}

// parseSubjectIDsArguments validates a model-supplied argument payload
// for get_subject_info and highlight_subjects.
func parseSubjectIDsArguments(arguments string) ([]string, error) {
	var args struct {
		SubjectIDs *[]string `json:"subject_ids"`
	}

	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToolArguments, err)
	}

	if args.SubjectIDs == nil {
		return nil, fmt.Errorf("%w: missing field subject_ids", ErrInvalidToolArguments)
	}

	return *args.SubjectIDs, nil
}
