// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"rag-chat-api/internal/domain/entity"
)

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// OrganizationResponse 组织详情
type OrganizationResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
}

// CreateWorkspaceRequest 创建工作空间请求
type CreateWorkspaceRequest struct {
	Name     string          `json:"name" binding:"required"`
	Slug     string          `json:"slug" binding:"required"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// WorkspaceResponse 工作空间详情
type WorkspaceResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Settings       json.RawMessage `json:"settings,omitempty"`
	DocumentCount  int64           `json:"document_count"`
	RequestCount   int64           `json:"request_count"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      string          `json:"created_at"`
}

// CreateAgentRequest 创建智能体请求
type CreateAgentRequest struct {
	Name         string          `json:"name" binding:"required"`
	SystemPrompt string          `json:"system_prompt,omitempty"`
	ModelConfig  json.RawMessage `json:"model_config,omitempty"`
}

// UpdateAgentRequest 更新智能体请求
type UpdateAgentRequest struct {
	Name         *string         `json:"name,omitempty"`
	SystemPrompt *string         `json:"system_prompt,omitempty"`
	ModelConfig  json.RawMessage `json:"model_config,omitempty"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

// AgentResponse 智能体详情
type AgentResponse struct {
	ID           string          `json:"id"`
	WorkspaceID  string          `json:"workspace_id"`
	Name         string          `json:"name"`
	SystemPrompt string          `json:"system_prompt,omitempty"`
	ModelConfig  json.RawMessage `json:"model_config,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
}

// CreateAPIKeyRequest 创建 API Key 请求
type CreateAPIKeyRequest struct {
	Name      string     `json:"name" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// APIKeyResponse API Key 详情（不含明文与哈希）
type APIKeyResponse struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	KeyPrefix   string `json:"key_prefix"`
	IsActive    bool   `json:"is_active"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	LastUsedAt  string `json:"last_used_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// APIKeyCreatedResponse 创建响应，Key 明文仅此一次返回
type APIKeyCreatedResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

// ToOrganizationResponse 转换组织实体
func ToOrganizationResponse(o *entity.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Slug:      o.Slug,
		Settings:  o.Settings,
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

// ToWorkspaceResponse 转换工作空间实体
func ToWorkspaceResponse(w *entity.Workspace) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:             w.ID,
		OrganizationID: w.OrganizationID,
		Name:           w.Name,
		Slug:           w.Slug,
		Settings:       w.Settings,
		DocumentCount:  w.DocumentCount,
		RequestCount:   w.RequestCount,
		IsActive:       w.IsActive,
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
	}
}

// ToAgentResponse 转换智能体实体
func ToAgentResponse(a *entity.Agent) *AgentResponse {
	return &AgentResponse{
		ID:           a.ID,
		WorkspaceID:  a.WorkspaceID,
		Name:         a.Name,
		SystemPrompt: a.SystemPrompt,
		ModelConfig:  a.ModelConfig,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

// ToAPIKeyResponse 转换 API Key 实体
func ToAPIKeyResponse(k *entity.APIKey) *APIKeyResponse {
	resp := &APIKeyResponse{
		ID:          k.ID,
		WorkspaceID: k.WorkspaceID,
		Name:        k.Name,
		KeyPrefix:   k.KeyPrefix,
		IsActive:    k.IsActive,
		CreatedAt:   k.CreatedAt.Format(time.RFC3339),
	}
	if k.ExpiresAt != nil {
		resp.ExpiresAt = k.ExpiresAt.Format(time.RFC3339)
	}
	if k.LastUsedAt != nil {
		resp.LastUsedAt = k.LastUsedAt.Format(time.RFC3339)
	}
	return resp
}
