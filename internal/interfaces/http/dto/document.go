// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"rag-chat-api/internal/domain/entity"
)

// IngestDocumentRequest 文档摄取请求
type IngestDocumentRequest struct {
	Title    string          `json:"title" binding:"required"`
	Source   string          `json:"source,omitempty"`
	Content  string          `json:"content" binding:"required"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// DocumentResponse 文档摘要
type DocumentResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Source     string          `json:"source,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	ChunkCount int64           `json:"chunk_count"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// IngestDocumentResponse 文档摄取响应
type IngestDocumentResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// ToDocumentResponse 转换文档摘要
func ToDocumentResponse(d *entity.DocumentSummary) *DocumentResponse {
	return &DocumentResponse{
		ID:         d.ID,
		Title:      d.Title,
		Source:     d.Source,
		Metadata:   d.Metadata,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.Format(time.RFC3339),
	}
}

// ToDocumentResponses 批量转换文档摘要
func ToDocumentResponses(docs []*entity.DocumentSummary) []*DocumentResponse {
	out := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToDocumentResponse(d))
	}
	return out
}
