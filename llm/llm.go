package llm

import (
	"context"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation. Assistant messages may carry
// tool calls; tool messages answer exactly one call from the preceding
// assistant message, referenced by ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a model-issued request to invoke a named tool. Arguments
// is the raw JSON text supplied by the model and must be validated
// before any dispatch.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool declares one callable operation to the model.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Completion is the model's answer for one round: either plain text or
// one or more tool calls.
type Completion struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ChatCompleter is the chat-completion collaborator.
type ChatCompleter interface {
	ChatComplete(ctx context.Context, messages []Message, tools []Tool) (*Completion, error)
}

// Embedder is the text-embedding collaborator.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Config struct {
	BaseURL        string   `yaml:"baseURL"`
	APIKeyEnv      string   `yaml:"apiKeyEnv"`
	ChatModel      string   `yaml:"chatModel"`
	EmbeddingModel string   `yaml:"embeddingModel"`
	Timeout        Duration `yaml:"timeout"`
	MaxAttempts    int      `yaml:"maxAttempts"`
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() ([]byte, error) {
	str := d.Duration().String()
	return yaml.Marshal(str)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}
