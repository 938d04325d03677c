// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"rag-chat-api/internal/application/chat"
)

// ChatRequest 对话请求
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	AgentID   string `json:"agent_id,omitempty"`

	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// SearchType 检索偏好提示：vector | hybrid | graph
	SearchType string         `json:"search_type,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ToolCallResponse 工具调用详情
type ToolCallResponse struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	SessionID string             `json:"session_id"`
	Message   string             `json:"message"`
	ToolsUsed []string           `json:"tools_used"`
	ToolCalls []ToolCallResponse `json:"tool_calls,omitempty"`
	Metadata  map[string]any     `json:"metadata,omitempty"`
}

// ToChatResponse 将编排器输出转换为响应，echo 为请求方透传的元数据
func ToChatResponse(out *chat.TurnOutput, durationMs int64, echo map[string]any) *ChatResponse {
	resp := &ChatResponse{
		SessionID: out.SessionID,
		Message:   out.Content,
		ToolsUsed: []string{},
		Metadata: map[string]any{
			"duration_ms": durationMs,
		},
	}
	for k, v := range echo {
		if _, ok := resp.Metadata[k]; !ok {
			resp.Metadata[k] = v
		}
	}
	for _, tc := range out.ToolCalls {
		resp.ToolsUsed = append(resp.ToolsUsed, tc.Name)
		resp.ToolCalls = append(resp.ToolCalls, ToolCallResponse{
			Name:      tc.Name,
			Arguments: tc.Arguments,
		})
	}
	return resp
}
