package nats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/subjectexplorer"
	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm"
)

func MakeEndpoints(nc *nats.Conn, prefix string) *subjectexplorer.EndpointSet {
	return &subjectexplorer.EndpointSet{
		CreateSession:     CreateSessionEndpoint(nc, prefix+".create_session"),
		RemoveSession:     RemoveSessionEndpoint(nc, prefix+".remove_session"),
		Chat:              ChatEndpoint(nc, prefix+".chat"),
		Messages:          MessagesEndpoint(nc, prefix+".messages"),
		Highlights:        HighlightsEndpoint(nc, prefix+".highlights"),
		ListSubjects:      ListSubjectsEndpoint(nc, prefix+".list_subjects"),
		SearchSubjects:    SearchSubjectsEndpoint(nc, prefix+".search_subjects"),
		SubjectInfo:       SubjectInfoEndpoint(nc, prefix+".subject_info"),
		HighlightSubjects: HighlightSubjectsEndpoint(nc, prefix+".highlight_subjects"),
		CallTool:          CallToolEndpoint(nc, prefix+".call_tool"),
	}
}

func CreateSessionEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(subjectexplorer.CreateSessionRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var created subjectexplorer.CreateSessionResponse
		if err := json.Unmarshal(resp.Data, &created); err != nil {
			return nil, err
		}

		return &created, nil
	}
}

func RemoveSessionEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		sessionID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request")
		}

		resp, err := nc.Request(topic, []byte(sessionID), nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		return string(resp.Data), nil
	}
}

func ChatEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(subjectexplorer.ChatRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var chat subjectexplorer.ChatResponse
		if err := json.Unmarshal(resp.Data, &chat); err != nil {
			return nil, err
		}

		return &chat, nil
	}
}

func MessagesEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		sessionID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request")
		}

		resp, err := nc.Request(topic, []byte(sessionID), nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var messages []llm.Message
		if err := json.Unmarshal(resp.Data, &messages); err != nil {
			return nil, err
		}

		return messages, nil
	}
}

func HighlightsEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		sessionID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request")
		}

		resp, err := nc.Request(topic, []byte(sessionID), nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var entries []subjectexplorer.HighlightEntry
		if err := json.Unmarshal(resp.Data, &entries); err != nil {
			return nil, err
		}

		return entries, nil
	}
}

func ListSubjectsEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		resp, err := nc.Request(topic, nil, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var subjects []catalog.Subject
		if err := json.Unmarshal(resp.Data, &subjects); err != nil {
			return nil, err
		}

		return subjects, nil
	}
}

func SearchSubjectsEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(subjectexplorer.SearchSubjectsRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var matches []catalog.Match
		if err := json.Unmarshal(resp.Data, &matches); err != nil {
			return nil, err
		}

		return matches, nil
	}
}

func SubjectInfoEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(subjectexplorer.SubjectInfoRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		return string(resp.Data), nil
	}
}

func HighlightSubjectsEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(subjectexplorer.HighlightSubjectsRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var result subjectexplorer.HighlightSubjectsResponse
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, err
		}

		return &result, nil
	}
}

func CallToolEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(subjectexplorer.CallToolRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		return string(resp.Data), nil
	}
}

func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	return errors.New(code + ":" + description)
}
