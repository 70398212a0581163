package subjectexplorer

import (
	"context"
	"errors"

	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm"
)

// ProxyMiddleware turns an EndpointSet into a Service, so a remote
// explorer can be driven through the same interface.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Close() error {
	return errors.New("method not implemented")
}

func (mw *proxyMiddleware) CreateSession(ctx context.Context, id string, sinks ...HighlightSink) (string, error) {
	if len(sinks) > 0 {
		return "", errors.New("remote sessions do not support sinks")
	}

	req := CreateSessionRequest{
		SessionID: id,
	}

	resp, err := mw.endpoints.CreateSession(ctx, req)
	if err != nil {
		return "", err
	}

	created, ok := resp.(*CreateSessionResponse)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return created.SessionID, nil
}

func (mw *proxyMiddleware) RemoveSession(ctx context.Context, id string) error {
	_, err := mw.endpoints.RemoveSession(ctx, id)
	return err
}

func (mw *proxyMiddleware) Chat(ctx context.Context, sessionID string, text string) (string, error) {
	req := ChatRequest{
		SessionID: sessionID,
		Text:      text,
	}

	resp, err := mw.endpoints.Chat(ctx, req)
	if err != nil {
		return "", err
	}

	chat, ok := resp.(*ChatResponse)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return chat.Reply, nil
}

func (mw *proxyMiddleware) Messages(ctx context.Context, sessionID string) ([]llm.Message, error) {
	resp, err := mw.endpoints.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, ok := resp.([]llm.Message)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return messages, nil
}

func (mw *proxyMiddleware) Highlights(ctx context.Context, sessionID string) ([]HighlightEntry, error) {
	resp, err := mw.endpoints.Highlights(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entries, ok := resp.([]HighlightEntry)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return entries, nil
}

func (mw *proxyMiddleware) ListSubjects(ctx context.Context) ([]catalog.Subject, error) {
	resp, err := mw.endpoints.ListSubjects(ctx, nil)
	if err != nil {
		return nil, err
	}

	subjects, ok := resp.([]catalog.Subject)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return subjects, nil
}

func (mw *proxyMiddleware) SearchSubjects(ctx context.Context, query string, k ...int) ([]catalog.Match, error) {
	n := 0
	if len(k) > 0 {
		n = k[0]
	}

	req := SearchSubjectsRequest{
		Query: query,
		K:     n,
	}

	resp, err := mw.endpoints.SearchSubjects(ctx, req)
	if err != nil {
		return nil, err
	}

	matches, ok := resp.([]catalog.Match)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return matches, nil
}

func (mw *proxyMiddleware) SubjectInfo(ctx context.Context, ids []string) (string, error) {
	req := SubjectInfoRequest{
		SubjectIDs: ids,
	}

	resp, err := mw.endpoints.SubjectInfo(ctx, req)
	if err != nil {
		return "", err
	}

	info, ok := resp.(string)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return info, nil
}

func (mw *proxyMiddleware) HighlightSubjects(ctx context.Context, sessionID string, ids []string) (string, error) {
	req := HighlightSubjectsRequest{
		SessionID:  sessionID,
		SubjectIDs: ids,
	}

	resp, err := mw.endpoints.HighlightSubjects(ctx, req)
	if err != nil {
		return "", err
	}

	result, ok := resp.(*HighlightSubjectsResponse)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return result.Status, nil
}

func (mw *proxyMiddleware) CallTool(ctx context.Context, sessionID string, name ToolName, arguments string) (string, error) {
	req := CallToolRequest{
		SessionID: sessionID,
		Name:      string(name),
		Arguments: arguments,
	}

	resp, err := mw.endpoints.CallTool(ctx, req)
	if err != nil {
		return "", err
	}

	result, ok := resp.(string)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return result, nil
}
