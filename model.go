package subjectexplorer

import (
	"errors"

	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm"
)

var (
	ErrInvalidSessionID          = errors.New("invalid session ID")
	ErrSessionAlreadyExists      = errors.New("session already exists")
	ErrSessionNotFound           = errors.New("session not found")
	ErrEmptyMessage              = errors.New("empty message")
	ErrUnknownTool               = errors.New("unknown tool")
	ErrInvalidToolArguments      = errors.New("invalid tool arguments")
	ErrConversationDepthExceeded = errors.New("conversation depth exceeded")
	ErrChatCompletion            = errors.New("chat completion failed")
	ErrEmbeddingService          = errors.New("embedding service failed")
)

type ContextKey string

const SessionID ContextKey = "session_id"

const (
	DefaultMaxRounds = 8

	DefaultSystemPrompt = "Don't make assumptions about what values to plug into functions. " +
		"Ask for clarification if a user request is ambiguous. " +
		"Always include both subject id and subject title such as " +
		"'EM.411 Foundations of System Design and Management' when referring to a subject. " +
		"Always highlight the subjects in the graph when referring to them."

	DefaultGreeting = "how can I help you today?"
)

type Config struct {
	Dataset      string       `yaml:"dataset"`
	SystemPrompt string       `yaml:"systemPrompt"`
	Greeting     string       `yaml:"greeting"`
	MaxRounds    int          `yaml:"maxRounds"`
	Search       SearchConfig `yaml:"search"`
	LLM          llm.Config   `yaml:"llm"`
}

type SearchConfig struct {
	Threshold float64 `yaml:"threshold"`
	TopN      int     `yaml:"topN"`
}

func (cfg *Config) ApplyDefaults() {
	if cfg.Dataset == "" {
		cfg.Dataset = "full_embeddings.json"
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	if cfg.Greeting == "" {
		cfg.Greeting = DefaultGreeting
	}

	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}

	if cfg.Search.Threshold == 0 {
		cfg.Search.Threshold = catalog.DefaultThreshold
	}

	if cfg.Search.TopN <= 0 {
		cfg.Search.TopN = catalog.DefaultTopN
	}
}

// HighlightEntry is what the visualization needs to mark one subject.
type HighlightEntry struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// HighlightSink receives the full highlight set each time it is
// replaced. The core never renders; it only publishes.
type HighlightSink interface {
	OnHighlight(entries []HighlightEntry)
}

type HighlightSinkFunc func(entries []HighlightEntry)

func (f HighlightSinkFunc) OnHighlight(entries []HighlightEntry) {
	f(entries)
}
