package subjectexplorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm"
)

// Service defines the core logic of the subject explorer.
type Service interface {

	// Close gracefully shuts down the service and drops all sessions.
	Close() error

	// CreateSession opens a new conversation session. An empty id asks
	// the service to generate one. The returned id is the handle for
	// every other session-scoped call.
	CreateSession(ctx context.Context, id string, sinks ...HighlightSink) (string, error)

	// RemoveSession ends a session and discards its state.
	RemoveSession(ctx context.Context, id string) error

	// Chat runs one user turn through the tool-calling loop and
	// returns the assistant's final answer.
	Chat(ctx context.Context, sessionID string, text string) (string, error)

	// Messages returns the session's conversation history.
	Messages(ctx context.Context, sessionID string) ([]llm.Message, error)

	// Highlights returns the session's current highlight set.
	Highlights(ctx context.Context, sessionID string) ([]HighlightEntry, error)

	// ListSubjects returns the full catalog in dataset order.
	ListSubjects(ctx context.Context) ([]catalog.Subject, error)

	// SearchSubjects embeds the query and ranks catalog subjects by
	// cosine similarity.
	SearchSubjects(ctx context.Context, query string, k ...int) ([]catalog.Match, error)

	// SubjectInfo formats title/description lines for the given ids,
	// reporting unknown ids per item.
	SubjectInfo(ctx context.Context, ids []string) (string, error)

	// HighlightSubjects replaces the session's highlight set with the
	// known subjects among ids.
	HighlightSubjects(ctx context.Context, sessionID string, ids []string) (string, error)

	// CallTool executes one registry tool from a model-supplied
	// argument payload, validating it before dispatch.
	CallTool(ctx context.Context, sessionID string, name ToolName, arguments string) (string, error)
}

type ServiceMiddleware func(Service) Service

func NewService(cfg Config, cat *catalog.Catalog, completer llm.ChatCompleter, embedder llm.Embedder) Service {
	cfg.ApplyDefaults()

	log := zap.L().With(
		zap.String("service", "subjectexplorer"),
	)

	return &service{
		cat:       cat,
		completer: completer,
		embedder:  embedder,
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		log:       log,
	}
}

type service struct {
	cat       *catalog.Catalog
	completer llm.ChatCompleter
	embedder  llm.Embedder

	sessions   map[string]*Session
	sessionsMu sync.RWMutex

	cfg Config
	log *zap.Logger
}

func (svc *service) Close() error {
	svc.sessionsMu.Lock()
	defer svc.sessionsMu.Unlock()

	svc.sessions = make(map[string]*Session)
	return nil
}

func (svc *service) CreateSession(ctx context.Context, id string, sinks ...HighlightSink) (string, error) {
	if id == "" {
		id = NewSessionID()
	}

	svc.sessionsMu.Lock()
	defer svc.sessionsMu.Unlock()

	if _, ok := svc.sessions[id]; ok {
		return "", ErrSessionAlreadyExists
	}

	svc.sessions[id] = NewSession(id, svc.cfg.SystemPrompt, svc.cfg.Greeting, sinks...)

	return id, nil
}

func (svc *service) RemoveSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidSessionID
	}

	svc.sessionsMu.Lock()
	defer svc.sessionsMu.Unlock()

	if _, ok := svc.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(svc.sessions, id)
	return nil
}

func (svc *service) session(id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidSessionID
	}

	svc.sessionsMu.RLock()
	defer svc.sessionsMu.RUnlock()

	session, ok := svc.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Chat drives the orchestration loop: send history plus tool schemas,
// dispatch any requested tool calls, and repeat until the model answers
// without tool calls or the round bound is hit. Tool results stay in
// the history even when a later model call fails, so a retried turn
// sees them; tool side effects may repeat on such a retry.
func (svc *service) Chat(ctx context.Context, sessionID string, text string) (string, error) {
	session, err := svc.session(sessionID)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	log := svc.log.With(
		zap.String("action", "chat"),
		zap.String("session_id", sessionID),
	)

	session.Append(llm.Message{
		Role:    llm.RoleUser,
		Content: text,
	})

	schemas := ToolSchemas()

	for round := 0; round < svc.cfg.MaxRounds; round++ {
		completion, err := svc.completer.ChatComplete(ctx, session.Messages(), schemas)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrChatCompletion, err)
		}

		if len(completion.ToolCalls) == 0 {
			session.Append(llm.Message{
				Role:    llm.RoleAssistant,
				Content: completion.Content,
			})

			return completion.Content, nil
		}

		session.Append(llm.Message{
			Role:      llm.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		for _, call := range completion.ToolCalls {
			log := log.With(
				zap.Int("round", round),
				zap.String("tool", call.Name),
			)

			content, err := svc.CallTool(ctx, sessionID, ToolName(call.Name), call.Arguments)
			if err != nil {
				log.Error(err.Error())

				// Tool-level failures become result text so the model
				// can react. Anything else aborts the turn; the history
				// appended so far stays for a retried turn.
				switch {
				case errors.Is(err, ErrUnknownTool):
					content = "Error: function does not exist"
				case errors.Is(err, ErrInvalidToolArguments):
					content = "Error: " + err.Error()
				default:
					return "", err
				}
			}

			session.Append(llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    content,
			})
		}
	}

	return "", ErrConversationDepthExceeded
}

func (svc *service) Messages(ctx context.Context, sessionID string) ([]llm.Message, error) {
	session, err := svc.session(sessionID)
	if err != nil {
		return nil, err
	}

	return session.Messages(), nil
}

func (svc *service) Highlights(ctx context.Context, sessionID string) ([]HighlightEntry, error) {
	session, err := svc.session(sessionID)
	if err != nil {
		return nil, err
	}

	return session.Highlights(), nil
}

func (svc *service) ListSubjects(ctx context.Context) ([]catalog.Subject, error) {
	return svc.cat.All(), nil
}

func (svc *service) SearchSubjects(ctx context.Context, query string, k ...int) ([]catalog.Match, error) {
	n := svc.cfg.Search.TopN
	if len(k) > 0 && k[0] > 0 {
		n = k[0]
	}

	vector, err := svc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, err)
	}

	return svc.cat.Search(vector, svc.cfg.Search.Threshold, n)
}

func (svc *service) SubjectInfo(ctx context.Context, ids []string) (string, error) {
	lines := make([]string, len(ids))
	for i, id := range ids {
		subject, ok := svc.cat.Get(id)
		if !ok {
			lines[i] = fmt.Sprintf("Subject %s not found", id)
			continue
		}

		lines[i] = subjectLine(subject)
	}

	return strings.Join(lines, "\n"), nil
}

func (svc *service) HighlightSubjects(ctx context.Context, sessionID string, ids []string) (string, error) {
	session, err := svc.session(sessionID)
	if err != nil {
		return "", err
	}

	entries := make([]HighlightEntry, 0, len(ids))
	missing := make([]string, 0)

	for _, id := range ids {
		subject, ok := svc.cat.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}

		entries = append(entries, HighlightEntry{
			ID:    subject.ID,
			Title: subject.Title,
			X:     subject.X,
			Y:     subject.Y,
		})
	}

	session.SetHighlights(entries)

	if len(missing) > 0 {
		return "Subjects are highlighted in the graph. Subjects not found: " +
			strings.Join(missing, ", "), nil
	}

	return "Subjects are highlighted in the graph", nil
}

func (svc *service) CallTool(ctx context.Context, sessionID string, name ToolName, arguments string) (string, error) {
	switch name {
	case ToolFindRelatedSubjects:
		query, err := parseQueryArguments(arguments)
		if err != nil {
			return "", err
		}

		matches, err := svc.SearchSubjects(ctx, query)
		if err != nil {
			return "", err
		}

		lines := make([]string, len(matches))
		for i, match := range matches {
			lines[i] = subjectLine(match.Subject)
		}

		return strings.Join(lines, "\n"), nil

	case ToolGetSubjectInfo:
		ids, err := parseSubjectIDsArguments(arguments)
		if err != nil {
			return "", err
		}

		return svc.SubjectInfo(ctx, ids)

	case ToolHighlightSubjects:
		ids, err := parseSubjectIDsArguments(arguments)
		if err != nil {
			return "", err
		}

		return svc.HighlightSubjects(ctx, sessionID, ids)

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func subjectLine(subject catalog.Subject) string {
	return fmt.Sprintf("Title: %s %s. Description: %s",
		subject.ID, subject.Title, subject.Description)
}
