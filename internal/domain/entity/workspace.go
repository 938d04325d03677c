// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Workspace 知识库隔离边界
// 文档、分片、会话与智能体都严格归属于一个 Workspace，禁止跨空间检索。
type Workspace struct {
	ID             string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID string          `json:"organization_id" gorm:"type:uuid;index;not null"`
	Name           string          `json:"name" gorm:"type:varchar(255);not null"`
	Slug           string          `json:"slug" gorm:"type:varchar(100);not null"`
	Settings       json.RawMessage `json:"settings,omitempty" gorm:"type:jsonb"`
	DocumentCount  int64           `json:"document_count" gorm:"default:0"`
	RequestCount   int64           `json:"request_count" gorm:"default:0"`
	IsActive       bool            `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Workspace) TableName() string {
	return "workspaces"
}

func NewWorkspace(organizationID, name, slug string) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           name,
		Slug:           slug,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
