package subjectexplorer

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	CreateSession     endpoint.Endpoint
	RemoveSession     endpoint.Endpoint
	Chat              endpoint.Endpoint
	Messages          endpoint.Endpoint
	Highlights        endpoint.Endpoint
	ListSubjects      endpoint.Endpoint
	SearchSubjects    endpoint.Endpoint
	SubjectInfo       endpoint.Endpoint
	HighlightSubjects endpoint.Endpoint
	CallTool          endpoint.Endpoint
}

type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

func CreateSessionEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(CreateSessionRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		sessionID, err := svc.CreateSession(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}

		return &CreateSessionResponse{SessionID: sessionID}, nil
	}
}

func RemoveSessionEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		sessionID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		err := svc.RemoveSession(ctx, sessionID)
		return nil, err
	}
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type ChatResponse struct {
	Reply      string           `json:"reply"`
	Highlights []HighlightEntry `json:"highlights"`
}

func ChatEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ChatRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		reply, err := svc.Chat(ctx, req.SessionID, req.Text)
		if err != nil {
			return nil, err
		}

		highlights, err := svc.Highlights(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}

		return &ChatResponse{
			Reply:      reply,
			Highlights: highlights,
		}, nil
	}
}

func MessagesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		sessionID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.Messages(ctx, sessionID)
	}
}

func HighlightsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		sessionID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.Highlights(ctx, sessionID)
	}
}

func ListSubjectsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		return svc.ListSubjects(ctx)
	}
}

type SearchSubjectsRequest struct {
	Query string `form:"query" json:"query"`
	K     int    `form:"k" json:"k,omitempty"`
}

func SearchSubjectsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SearchSubjectsRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.SearchSubjects(ctx, req.Query, req.K)
	}
}

type SubjectInfoRequest struct {
	SubjectIDs []string `json:"subject_ids"`
}

func SubjectInfoEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SubjectInfoRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.SubjectInfo(ctx, req.SubjectIDs)
	}
}

type HighlightSubjectsRequest struct {
	SessionID  string   `json:"session_id"`
	SubjectIDs []string `json:"subject_ids"`
}

type HighlightSubjectsResponse struct {
	Status     string           `json:"status"`
	Highlights []HighlightEntry `json:"highlights"`
}

func HighlightSubjectsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(HighlightSubjectsRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		status, err := svc.HighlightSubjects(ctx, req.SessionID, req.SubjectIDs)
		if err != nil {
			return nil, err
		}

		highlights, err := svc.Highlights(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}

		return &HighlightSubjectsResponse{
			Status:     status,
			Highlights: highlights,
		}, nil
	}
}

type CallToolRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func CallToolEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(CallToolRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.CallTool(ctx, req.SessionID, ToolName(req.Name), req.Arguments)
	}
}
