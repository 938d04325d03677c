// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"rag-chat-api/internal/domain/entity"
)

// SessionResponse 会话详情
type SessionResponse struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id,omitempty"`
	ExpiresAt   string `json:"expires_at"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// MessageResponse 会话消息
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// SessionDetailResponse 会话详情（含消息）
type SessionDetailResponse struct {
	Session  *SessionResponse   `json:"session"`
	Messages []*MessageResponse `json:"messages"`
}

// ToSessionResponse 转换会话实体
func ToSessionResponse(s *entity.Session) *SessionResponse {
	return &SessionResponse{
		ID:          s.ID,
		WorkspaceID: s.WorkspaceID,
		UserID:      s.UserID,
		ExpiresAt:   s.ExpiresAt.Format(time.RFC3339),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
}

// ToMessageResponses 批量转换会话消息
func ToMessageResponses(messages []*entity.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, &MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
