// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由（API Key 认证，工作空间作用域）
func RegisterV1Routes(v1 *gin.RouterGroup, h RouterHandlers) {
	// 对话
	chat := v1.Group("/chat")
	{
		chat.POST("", h.Chat.Chat)
		chat.POST("/stream", h.Chat.ChatStream) // SSE
	}

	// 检索
	search := v1.Group("/search")
	{
		search.POST("/vector", h.Search.VectorSearch)
		search.POST("/hybrid", h.Search.HybridSearch)
		search.POST("/graph", h.Search.GraphSearch)
	}

	// 文档
	documents := v1.Group("/documents")
	{
		documents.GET("", h.Document.ListDocuments)
	}

	// 会话
	sessions := v1.Group("/sessions")
	{
		sessions.GET("", h.Session.ListSessions)
		sessions.GET("/:sid", h.Session.GetSession)
	}
}

// RegisterAdminRoutes 注册管理端路由（JWT 认证）
func RegisterAdminRoutes(admin *gin.RouterGroup, h RouterHandlers) {
	// 组织管理
	organizations := admin.Group("/organizations")
	{
		organizations.GET("", h.Admin.ListOrganizations)
		organizations.POST("", h.Admin.CreateOrganization)

		// 组织下的工作空间
		organizations.GET("/:oid/workspaces", h.Admin.ListWorkspaces)
		organizations.POST("/:oid/workspaces", h.Admin.CreateWorkspace)
	}

	// 工作空间管理
	workspaces := admin.Group("/workspaces")
	{
		workspaces.DELETE("/:wid", h.Admin.DeleteWorkspace)

		// 工作空间下的智能体
		workspaces.GET("/:wid/agents", h.Admin.ListAgents)
		workspaces.POST("/:wid/agents", h.Admin.CreateAgent)
		workspaces.PUT("/:wid/agents/:aid", h.Admin.UpdateAgent)
		workspaces.DELETE("/:wid/agents/:aid", h.Admin.DeleteAgent)

		// 工作空间下的 API Key
		workspaces.GET("/:wid/keys", h.Admin.ListAPIKeys)
		workspaces.POST("/:wid/keys", h.Admin.CreateAPIKey)

		// 工作空间下的文档摄取
		workspaces.POST("/:wid/documents", h.Document.IngestDocument)
		workspaces.DELETE("/:wid/documents/:did", h.Document.DeleteDocument)
	}

	// API Key 吊销
	keys := admin.Group("/keys")
	{
		keys.DELETE("/:kid", h.Admin.RevokeAPIKey)
	}
}
