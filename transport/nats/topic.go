package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/subjectexplorer"
)

func AddEndpoints(group micro.Group, endpoints subjectexplorer.EndpointSet) {
	group.AddEndpoint("create_session", CreateSessionHandler(endpoints.CreateSession))
	group.AddEndpoint("remove_session", RemoveSessionHandler(endpoints.RemoveSession))
	group.AddEndpoint("chat", ChatHandler(endpoints.Chat))
	group.AddEndpoint("messages", MessagesHandler(endpoints.Messages))
	group.AddEndpoint("highlights", HighlightsHandler(endpoints.Highlights))
	group.AddEndpoint("list_subjects", ListSubjectsHandler(endpoints.ListSubjects))
	group.AddEndpoint("search_subjects", SearchSubjectsHandler(endpoints.SearchSubjects))
	group.AddEndpoint("subject_info", SubjectInfoHandler(endpoints.SubjectInfo))
	group.AddEndpoint("highlight_subjects", HighlightSubjectsHandler(endpoints.HighlightSubjects))
	group.AddEndpoint("call_tool", CallToolHandler(endpoints.CallTool))
}
