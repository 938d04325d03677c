// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// Document 知识库文档，由摄取管线写入，检索侧只读
type Document struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID string          `json:"workspace_id" gorm:"type:uuid;index;not null"`
	Title       string          `json:"title" gorm:"type:text;not null"`
	Source      string          `json:"source" gorm:"type:text;not null"`
	Content     string          `json:"content,omitempty" gorm:"type:text"`
	Metadata    json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

// Chunk 文档分片，检索单元
// 向量存于 Milvus，Postgres 侧保留文本用于关键词检索；随文档级联删除。
type Chunk struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID  string          `json:"document_id" gorm:"type:uuid;index;not null;constraint:OnDelete:CASCADE"`
	WorkspaceID string          `json:"workspace_id" gorm:"type:uuid;index;not null"`
	Content     string          `json:"content" gorm:"type:text;not null"`
	ChunkIndex  int             `json:"chunk_index" gorm:"not null"`
	TokenCount  int             `json:"token_count,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}

// DocumentSummary 文档列表视图（含分片数）
type DocumentSummary struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Source     string          `json:"source"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	ChunkCount int64           `json:"chunk_count"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
