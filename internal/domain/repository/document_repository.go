// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"rag-chat-api/internal/domain/entity"
)

// KeywordMatch 关键词检索命中的分片
type KeywordMatch struct {
	ChunkID       string
	DocumentID    string
	DocumentTitle string
	Source        string
	Content       string
	// Score 归一化到 [0,1] 的文本相关度
	Score float64
}

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	GetByID(ctx context.Context, workspaceID, id string) (*entity.Document, error)
	Delete(ctx context.Context, workspaceID, id string) error
	// ListSummaries 返回工作空间内文档列表（含分片数），按创建时间降序
	ListSummaries(ctx context.Context, workspaceID string, pagination Pagination) (*PagedResult[*entity.DocumentSummary], error)
}

type ChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*entity.Chunk) error
	GetByIDs(ctx context.Context, workspaceID string, ids []string) ([]*entity.Chunk, error)
	// KeywordSearch 全文检索，按相关度降序返回至多 limit 条
	KeywordSearch(ctx context.Context, workspaceID, query string, limit int) ([]*KeywordMatch, error)
	DeleteByDocument(ctx context.Context, workspaceID, documentID string) error
}
