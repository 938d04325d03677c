// Package handler 提供 HTTP 请求处理器
package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"rag-chat-api/internal/application/chat"
	"rag-chat-api/internal/config"
	"rag-chat-api/internal/interfaces/http/dto"
	"rag-chat-api/internal/interfaces/http/middleware"
	apperrors "rag-chat-api/pkg/errors"
	"rag-chat-api/pkg/logger"
	"rag-chat-api/pkg/metrics"
)

// ChatHandler 对话接口
type ChatHandler struct {
	cfg          *config.Config
	orchestrator *chat.Orchestrator
}

// NewChatHandler 创建对话处理器
func NewChatHandler(cfg *config.Config, orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{
		cfg:          cfg,
		orchestrator: orchestrator,
	}
}

// Chat 执行一轮对话
// @Summary 执行一轮对话
// @Description 解析会话、执行智能体（含检索工具）并返回完整回答
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "对话请求"
// @Success 200 {object} dto.Response[dto.ChatResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	in, err := h.buildTurnInput(workspaceID, &req)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	start := time.Now()
	out, err := h.orchestrator.ExecuteTurn(ctx, in)
	if err != nil {
		// 智能体失败属于降级而非接口错误：错误回答已落库，随会话正常返回
		if apperrors.IsCode(err, apperrors.CodeAgentExecutionFailure) && out != nil {
			dto.Success(c, dto.ToChatResponse(out, time.Since(start).Milliseconds(), req.Metadata))
			return
		}
		logger.Error(ctx, "chat turn failed", err, "workspace_id", workspaceID)
		writeAppError(c, err)
		return
	}

	dto.Success(c, dto.ToChatResponse(out, time.Since(start).Milliseconds(), req.Metadata))
}

// ChatStream SSE 流式对话
// @Summary SSE 流式对话
// @Description 事件顺序 session -> text* -> tools? -> end，失败以 error 事件收尾
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/chat/stream [post]
func (h *ChatHandler) ChatStream(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	in, err := h.buildTurnInput(workspaceID, &req)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	metrics.ChatStreamClients.Inc()
	defer metrics.ChatStreamClients.Dec()

	eventCh := make(chan chat.StreamEvent, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(eventCh)
		defer close(errCh)

		streamErr := h.orchestrator.StreamTurn(ctx, in, func(event chat.StreamEvent) error {
			select {
			case eventCh <- event:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if streamErr != nil {
			errCh <- streamErr
		}
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return false
			}
			c.SSEvent("", event)
			return event.Type != chat.EventEnd && event.Type != chat.EventError

		case streamErr, ok := <-errCh:
			if ok && streamErr != nil {
				c.SSEvent("", chat.StreamEvent{Type: chat.EventError, Error: streamErr.Error()})
			}
			return false

		case <-ctx.Done():
			return false
		}
	})
}

func (h *ChatHandler) buildTurnInput(workspaceID string, req *dto.ChatRequest) (*chat.TurnInput, error) {
	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	switch req.SearchType {
	case "", "vector", "hybrid", "graph":
	default:
		return nil, apperrors.New(apperrors.CodeInvalidParam, "search_type must be one of vector, hybrid, graph")
	}

	return &chat.TurnInput{
		WorkspaceID: workspaceID,
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		Message:     req.Message,
		AgentID:     req.AgentID,
		Provider:    provider,
		Model:       model,
		SearchType:  req.SearchType,
	}, nil
}
