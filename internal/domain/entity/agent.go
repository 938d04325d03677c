// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Agent 工作空间内的对话智能体配置
type Agent struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID  string          `json:"workspace_id" gorm:"type:uuid;index;not null"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	SystemPrompt string          `json:"system_prompt,omitempty" gorm:"type:text"`
	ModelConfig  json.RawMessage `json:"model_config,omitempty" gorm:"type:jsonb"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Agent) TableName() string {
	return "agents"
}

func NewAgent(workspaceID, name, systemPrompt string) *Agent {
	now := time.Now()
	return &Agent{
		ID:           uuid.New().String(),
		WorkspaceID:  workspaceID,
		Name:         name,
		SystemPrompt: systemPrompt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
