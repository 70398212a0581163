package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/flarexio/subjectexplorer/llm"
)

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrEmptyResponse = errors.New("empty response")
)

// Client talks to an OpenAI-compatible API and implements both the
// llm.ChatCompleter and llm.Embedder contracts.
type Client struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	maxAttempts    int
	backoffBase    time.Duration
	backoffCap     time.Duration
	timeout        time.Duration
	client         *http.Client
}

func NewClient(cfg llm.Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}

	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w in env %s", ErrMissingAPIKey, cfg.APIKeyEnv)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}

	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o"
	}

	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	timeout := cfg.Timeout.Duration()
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         key,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		maxAttempts:    cfg.MaxAttempts,
		backoffBase:    time.Second,
		backoffCap:     40 * time.Second,
		timeout:        timeout,
		client:         new(http.Client),
	}, nil
}

type chatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) ChatComplete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Completion, error) {
	body := chatRequest{
		Model:    c.chatModel,
		Messages: make([]chatMessage, len(messages)),
		Tools:    make([]chatTool, len(tools)),
	}

	for i, msg := range messages {
		wire := chatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}

		for _, call := range msg.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, chatToolCall{
				ID:   call.ID,
				Type: "function",
				Function: chatFunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}

		body.Messages[i] = wire
	}

	for i, tool := range tools {
		body.Tools[i] = chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		}
	}

	var out chatResponse
	if err := c.do(ctx, "/chat/completions", &body, &out); err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: %w", ErrEmptyResponse)
	}

	msg := out.Choices[0].Message

	completion := &llm.Completion{
		Content: msg.Content,
	}

	for _, call := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, llm.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return completion, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body := embeddingRequest{
		Model: c.embeddingModel,
		Input: text,
	}

	var out embeddingResponse
	if err := c.do(ctx, "/embeddings", &body, &out); err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}

	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings: %w", ErrEmptyResponse)
	}

	return out.Data[0].Embedding, nil
}

// do issues one POST with up to maxAttempts tries. Network errors, 429
// and 5xx responses are retried with randomized exponential backoff;
// other non-2xx statuses fail immediately.
func (c *Client) do(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		data, retryable, err := c.once(ctx, path, payload)
		if err != nil {
			lastErr = err
			if retryable {
				continue
			}

			return err
		}

		return json.Unmarshal(data, out)
	}

	return lastErr
}

func (c *Client) once(ctx context.Context, path string, payload []byte) (data []byte, retryable bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("request failed: %s", resp.Status)
	}

	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("request failed: %s", resp.Status)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	return data, false, nil
}

// backoff returns a random delay in (0, base*2^(attempt-1)], capped.
func (c *Client) backoff(attempt int) time.Duration {
	max := c.backoffBase << (attempt - 1)
	if max > c.backoffCap {
		max = c.backoffCap
	}

	return time.Duration(rand.Float64() * float64(max))
}
