package subjectexplorer

import (
	"context"

	"go.uber.org/zap"

	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "subjectexplorer"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) CreateSession(ctx context.Context, id string, sinks ...HighlightSink) (string, error) {
	log := mw.log.With(
		zap.String("action", "create_session"),
	)

	sessionID, err := mw.next.CreateSession(ctx, id, sinks...)
	if err != nil {
		log.Error(err.Error(), zap.String("session_id", id))
		return "", err
	}

	log.Info("session created", zap.String("session_id", sessionID))
	return sessionID, nil
}

func (mw *loggingMiddleware) RemoveSession(ctx context.Context, id string) error {
	log := mw.log.With(
		zap.String("action", "remove_session"),
		zap.String("session_id", id),
	)

	err := mw.next.RemoveSession(ctx, id)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("session removed")
	return nil
}

func (mw *loggingMiddleware) Chat(ctx context.Context, sessionID string, text string) (string, error) {
	log := mw.log.With(
		zap.String("action", "chat"),
		zap.String("session_id", sessionID),
	)

	reply, err := mw.next.Chat(ctx, sessionID, text)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("turn completed")
	return reply, nil
}

func (mw *loggingMiddleware) Messages(ctx context.Context, sessionID string) ([]llm.Message, error) {
	log := mw.log.With(
		zap.String("action", "messages"),
		zap.String("session_id", sessionID),
	)

	messages, err := mw.next.Messages(ctx, sessionID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("messages listed", zap.Int("count", len(messages)))
	return messages, nil
}

func (mw *loggingMiddleware) Highlights(ctx context.Context, sessionID string) ([]HighlightEntry, error) {
	log := mw.log.With(
		zap.String("action", "highlights"),
		zap.String("session_id", sessionID),
	)

	entries, err := mw.next.Highlights(ctx, sessionID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("highlights listed", zap.Int("count", len(entries)))
	return entries, nil
}

func (mw *loggingMiddleware) ListSubjects(ctx context.Context) ([]catalog.Subject, error) {
	log := mw.log.With(
		zap.String("action", "list_subjects"),
	)

	subjects, err := mw.next.ListSubjects(ctx)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("subjects listed", zap.Int("count", len(subjects)))
	return subjects, nil
}

func (mw *loggingMiddleware) SearchSubjects(ctx context.Context, query string, k ...int) ([]catalog.Match, error) {
	log := mw.log.With(
		zap.String("action", "search_subjects"),
		zap.String("query", query),
	)

	matches, err := mw.next.SearchSubjects(ctx, query, k...)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("subjects searched", zap.Int("count", len(matches)))
	return matches, nil
}

func (mw *loggingMiddleware) SubjectInfo(ctx context.Context, ids []string) (string, error) {
	log := mw.log.With(
		zap.String("action", "subject_info"),
		zap.Strings("subject_ids", ids),
	)

	info, err := mw.next.SubjectInfo(ctx, ids)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("subject info composed")
	return info, nil
}

func (mw *loggingMiddleware) HighlightSubjects(ctx context.Context, sessionID string, ids []string) (string, error) {
	log := mw.log.With(
		zap.String("action", "highlight_subjects"),
		zap.String("session_id", sessionID),
		zap.Strings("subject_ids", ids),
	)

	status, err := mw.next.HighlightSubjects(ctx, sessionID, ids)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("subjects highlighted")
	return status, nil
}

func (mw *loggingMiddleware) CallTool(ctx context.Context, sessionID string, name ToolName, arguments string) (string, error) {
	log := mw.log.With(
		zap.String("action", "call_tool"),
		zap.String("session_id", sessionID),
		zap.String("tool", string(name)),
	)

	result, err := mw.next.CallTool(ctx, sessionID, name, arguments)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("tool called")
	return result, nil
}
