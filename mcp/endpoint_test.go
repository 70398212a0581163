package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/flarexio/subjectexplorer"
	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm"
)

type stubCompleter struct{}

func (c *stubCompleter) ChatComplete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Completion, error) {
	return nil, errors.New("not scripted")
}

type stubEmbedder struct{}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0}, nil
}

func testService(t *testing.T) (subjectexplorer.Service, string) {
	t.Helper()

	cat, err := catalog.New([]catalog.Subject{
		{
			ID:          "EM.411",
			Title:       "Foundations of System Design and Management",
			Description: "Architecting complex systems.",
			Embedding:   []float64{1, 0},
			X:           1, Y: 2,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := subjectexplorer.NewService(subjectexplorer.Config{}, cat,
		new(stubCompleter), new(stubEmbedder))

	sessionID, err := svc.CreateSession(context.Background(), "mcp-session")
	if err != nil {
		t.Fatal(err)
	}

	return svc, sessionID
}

func TestUnmarshalInitializeRequest(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{
	  "jsonrpc": "2.0",
	  "id": 1,
	  "method": "initialize",
	  "params": {
	    "protocolVersion": "2024-11-05",
	    "clientInfo": {
	      "name": "ExampleClient",
	      "version": "1.0.0"
	    }
	  }
	}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	var params mcp.InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(mcp.JSONRPC_VERSION, req.JSONRPC)
	assert.Equal(mcp.NewRequestId(int64(1)), req.ID)
	assert.Equal(mcp.MethodInitialize, req.Method)
	assert.Equal("2024-11-05", params.ProtocolVersion)
}

func TestListToolsEndpoint(t *testing.T) {
	assert := assert.New(t)

	svc, _ := testService(t)

	endpoint := ListToolsEndpoint(svc)

	req := JSONRPCRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      mcp.NewRequestId(int64(1)),
		Method:  mcp.MethodToolsList,
	}

	msg := endpoint(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("expected a JSONRPC response")
		return
	}

	result, ok := resp.Result.(*mcp.ListToolsResult)
	if !ok {
		assert.Fail("expected a list tools result")
		return
	}

	assert.Len(result.Tools, 3)
	assert.Equal("find_related_subjects", result.Tools[0].Name)
}

func callTool(t *testing.T, ctx context.Context, svc subjectexplorer.Service, params string) mcp.JSONRPCMessage {
	t.Helper()

	endpoint := CallToolEndpoint(svc)

	req := JSONRPCRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      mcp.NewRequestId(int64(2)),
		Method:  mcp.MethodToolsCall,
		Params:  json.RawMessage(params),
	}

	return endpoint(ctx, req)
}

func TestCallToolEndpoint(t *testing.T) {
	assert := assert.New(t)

	svc, _ := testService(t)

	msg := callTool(t, context.Background(), svc,
		`{"name": "get_subject_info", "arguments": {"subject_ids": ["EM.411"]}}`)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("expected a JSONRPC response")
		return
	}

	result, ok := resp.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("expected a call tool result")
		return
	}

	if assert.Len(result.Content, 1) {
		text, ok := result.Content[0].(mcp.TextContent)
		if assert.True(ok) {
			assert.Equal(
				"Title: EM.411 Foundations of System Design and Management. Description: Architecting complex systems.",
				text.Text,
			)
		}
	}
}

func TestCallToolEndpointUnknownTool(t *testing.T) {
	assert := assert.New(t)

	svc, _ := testService(t)

	msg := callTool(t, context.Background(), svc,
		`{"name": "drop_database", "arguments": {}}`)

	resp, ok := msg.(mcp.JSONRPCError)
	if !ok {
		assert.Fail("expected a JSONRPC error")
		return
	}

	assert.Equal(mcp.INVALID_PARAMS, resp.Error.Code)
}

func TestCallToolEndpointHighlightWithSession(t *testing.T) {
	assert := assert.New(t)

	svc, sessionID := testService(t)

	ctx := context.WithValue(context.Background(), subjectexplorer.SessionID, sessionID)

	msg := callTool(t, ctx, svc,
		`{"name": "highlight_subjects", "arguments": {"subject_ids": ["em.411"]}}`)

	_, ok := msg.(mcp.JSONRPCResponse)
	assert.True(ok)

	highlights, err := svc.Highlights(context.Background(), sessionID)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Len(highlights, 1)
	assert.Equal("EM.411", highlights[0].ID)
}
