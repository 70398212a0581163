package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/subjectexplorer/llm"
)

func testClient(url string) *Client {
	return &Client{
		baseURL:        url,
		apiKey:         "test-key",
		chatModel:      "gpt-4o",
		embeddingModel: "text-embedding-3-small",
		maxAttempts:    3,
		backoffBase:    time.Millisecond,
		backoffCap:     10 * time.Millisecond,
		timeout:        time.Second,
		client:         new(http.Client),
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("TEST_OPENAI_KEY", "")

	_, err := NewClient(llm.Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	assert.ErrorIs(err, ErrMissingAPIKey)

	t.Setenv("TEST_OPENAI_KEY", "secret")

	client, err := NewClient(llm.Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	assert.NoError(err)
	assert.Equal("https://api.openai.com/v1", client.baseURL)
	assert.Equal(3, client.maxAttempts)
	assert.Equal(60*time.Second, client.timeout)
}

func TestChatCompleteParsesToolCalls(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/chat/completions", r.URL.Path)
		assert.Equal("Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}

		assert.Equal("gpt-4o", req.Model)
		assert.Len(req.Tools, 1)
		assert.Equal("function", req.Tools[0].Type)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_abc",
						"type": "function",
						"function": {
							"name": "find_related_subjects",
							"arguments": "{\"query\": \"architecture\"}"
						}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	completion, err := client.ChatComplete(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		[]llm.Tool{{Name: "find_related_subjects", Parameters: json.RawMessage(`{}`)}},
	)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Empty(completion.Content)
	assert.Len(completion.ToolCalls, 1)
	assert.Equal("call_abc", completion.ToolCalls[0].ID)
	assert.Equal("find_related_subjects", completion.ToolCalls[0].Name)
	assert.JSONEq(`{"query": "architecture"}`, completion.ToolCalls[0].Arguments)
}

func TestEmbed(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/embeddings", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	vector, err := client.Embed(context.Background(), "architecture")
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal([]float64{0.1, 0.2, 0.3}, vector)
}

func TestRetryOnServerError(t *testing.T) {
	assert := assert.New(t)

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"embedding": [1]}]}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	vector, err := client.Embed(context.Background(), "flaky")
	assert.NoError(err)
	assert.Equal([]float64{1}, vector)
	assert.Equal(3, attempts)
}

func TestRetriesExhausted(t *testing.T) {
	assert := assert.New(t)

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.Embed(context.Background(), "rate limited")
	assert.Error(err)
	assert.Equal(3, attempts, "bounded attempt count")
}

func TestNoRetryOnClientError(t *testing.T) {
	assert := assert.New(t)

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.Embed(context.Background(), "bad request")
	assert.Error(err)
	assert.Equal(1, attempts)
}

func TestBackoffIsCapped(t *testing.T) {
	assert := assert.New(t)

	client := testClient("http://unused")
	client.backoffBase = time.Second
	client.backoffCap = 40 * time.Second

	for attempt := 1; attempt < 16; attempt++ {
		delay := client.backoff(attempt)
		assert.GreaterOrEqual(delay, time.Duration(0))
		assert.LessOrEqual(delay, 40*time.Second)
	}
}
