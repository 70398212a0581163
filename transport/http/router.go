package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/subjectexplorer"

	mcpE "github.com/flarexio/subjectexplorer/mcp"
)

func AddRouters(r *gin.Engine, endpoints subjectexplorer.EndpointSet) {
	// RESTful API routes
	api := r.Group("/api")
	{
		api.POST("/sessions", CreateSessionHandler(endpoints.CreateSession))
		api.DELETE("/sessions/:session_id", RemoveSessionHandler(endpoints.RemoveSession))
		api.POST("/sessions/:session_id/chat", ChatHandler(endpoints.Chat))
		api.GET("/sessions/:session_id/messages", MessagesHandler(endpoints.Messages))
		api.GET("/sessions/:session_id/highlights", HighlightsHandler(endpoints.Highlights))
		api.PUT("/sessions/:session_id/highlights", HighlightSubjectsHandler(endpoints.HighlightSubjects))
		api.GET("/subjects", ListSubjectsHandler(endpoints.ListSubjects))
		api.GET("/subjects/search", SearchSubjectsHandler(endpoints.SearchSubjects))
		api.POST("/subjects/info", SubjectInfoHandler(endpoints.SubjectInfo))
		api.POST("/tools/call", CallToolHandler(endpoints.CallTool))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
