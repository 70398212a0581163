package subjectexplorer

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/flarexio/subjectexplorer/llm"
)

// Session holds one user's conversation and highlight set. The history
// grows monotonically; the highlight set is replaced wholesale by the
// highlight tool. Sessions share nothing but the read-only catalog.
type Session struct {
	id         string
	messages   []llm.Message
	highlights []HighlightEntry
	sinks      []HighlightSink

	mu sync.RWMutex
}

func NewSession(id string, systemPrompt string, greeting string, sinks ...HighlightSink) *Session {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleAssistant, Content: greeting},
	}

	return &Session{
		id:         id,
		messages:   messages,
		highlights: make([]HighlightEntry, 0),
		sinks:      sinks,
	}
}

func NewSessionID() string {
	bs := make([]byte, 8)
	rand.Read(bs)
	return hex.EncodeToString(bs)
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Messages() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]llm.Message, len(s.messages))
	copy(messages, s.messages)

	return messages
}

func (s *Session) Append(messages ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, messages...)
}

func (s *Session) Highlights() []HighlightEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]HighlightEntry, len(s.highlights))
	copy(entries, s.highlights)

	return entries
}

// SetHighlights replaces the highlight set and notifies the sinks.
func (s *Session) SetHighlights(entries []HighlightEntry) {
	s.mu.Lock()
	s.highlights = entries

	sinks := s.sinks
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.OnHighlight(entries)
	}
}
