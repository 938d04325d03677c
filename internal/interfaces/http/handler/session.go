// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"rag-chat-api/internal/domain/repository"
	"rag-chat-api/internal/interfaces/http/dto"
	"rag-chat-api/internal/interfaces/http/middleware"
	"rag-chat-api/pkg/logger"
)

// SessionHandler 会话查询接口
type SessionHandler struct {
	sessions repository.SessionRepository
	messages repository.MessageRepository
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(sessions repository.SessionRepository, messages repository.MessageRepository) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		messages: messages,
	}
}

// GetSession 会话详情（含消息，按时间升序）
// @Summary 会话详情
// @Tags Session
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)
	sessionID := dto.BindSessionID(c)

	session, err := h.sessions.GetByID(ctx, workspaceID, sessionID)
	if err != nil {
		logger.Error(ctx, "failed to load session", err, "session_id", sessionID)
		dto.InternalError(c, "failed to load session")
		return
	}
	if session == nil {
		dto.NotFound(c, "session not found")
		return
	}

	page := dto.BindPage(c)
	result, err := h.messages.ListBySession(ctx, sessionID, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to load session messages", err, "session_id", sessionID)
		dto.InternalError(c, "failed to load session messages")
		return
	}

	dto.Success(c, &dto.SessionDetailResponse{
		Session:  dto.ToSessionResponse(session),
		Messages: dto.ToMessageResponses(result.Items),
	})
}

// ListSessions 工作空间会话列表
// @Summary 会话列表
// @Tags Session
// @Produce json
// @Success 200 {object} dto.Response[[]dto.SessionResponse]
// @Router /v1/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)
	page := dto.BindPage(c)

	result, err := h.sessions.ListByWorkspace(ctx, workspaceID, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list sessions", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to list sessions")
		return
	}

	sessions := make([]*dto.SessionResponse, 0, len(result.Items))
	for _, s := range result.Items {
		sessions = append(sessions, dto.ToSessionResponse(s))
	}
	dto.SuccessWithPage(c, sessions, dto.NewPageMeta(page.Page, page.PageSize, int(result.Total)))
}
