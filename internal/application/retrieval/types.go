package retrieval

import (
	"context"
	"time"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

// SearchResult 检索命中结果
type SearchResult struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id,omitempty"`
	DocumentTitle string  `json:"document_title,omitempty"`
	Source        string  `json:"source,omitempty"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	VectorScore   float64 `json:"vector_score,omitempty"`
	TextScore     float64 `json:"text_score,omitempty"`
}

// GraphFact 知识图谱检索返回的事实
type GraphFact struct {
	UUID      string     `json:"uuid"`
	Fact      string     `json:"fact"`
	ValidAt   *time.Time `json:"valid_at,omitempty"`
	InvalidAt *time.Time `json:"invalid_at,omitempty"`
}

// SearchInput 检索输入
type SearchInput struct {
	WorkspaceID string
	Query       string

	// Limit nil 取默认值；显式传入必须 >= 1
	Limit *int

	// TextWeight 仅混合检索使用，nil 取默认值
	TextWeight *float64
}

// VectorHit 向量索引返回的单条命中
type VectorHit struct {
	ChunkID       string
	DocumentID    string
	DocumentTitle string
	Source        string
	Content       string
	// Score 已归一化到 [0,1] 的相似度（COSINE: score=1-distance）
	Score float64
}

// VectorChunk 待写入向量索引的分片
type VectorChunk struct {
	ChunkID       string
	DocumentID    string
	DocumentTitle string
	Source        string
	ChunkIndex    int
	Content       string
	Vector        []float32
}

// VectorRepository 定义应用层对向量存储/检索的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsureChunksCollection(ctx context.Context) error
	SearchChunks(ctx context.Context, workspaceID string, vector []float32, limit int) ([]*VectorHit, error)
	InsertChunks(ctx context.Context, workspaceID string, chunks []*VectorChunk) error
	DeleteChunksByDocument(ctx context.Context, workspaceID, documentID string) error
}

// GraphRepository 定义应用层对知识图谱检索的最小依赖（port）。
type GraphRepository interface {
	SearchFacts(ctx context.Context, workspaceID, query string, limit int) ([]*GraphFact, error)
}

// KeywordRepository 关键词全文检索（Postgres ts_rank）
type KeywordRepository interface {
	KeywordSearch(ctx context.Context, workspaceID, query string, limit int) ([]*repository.KeywordMatch, error)
}

// DocumentLister 文档列表查询
type DocumentLister interface {
	ListSummaries(ctx context.Context, workspaceID string, pagination repository.Pagination) (*repository.PagedResult[*entity.DocumentSummary], error)
}
