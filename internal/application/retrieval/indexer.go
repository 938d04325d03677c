package retrieval

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"rag-chat-api/internal/domain/entity"
)

const (
	defaultChunkSizeRunes    = 800
	defaultChunkOverlapRunes = 80
	defaultEmbeddingBatch    = 32
)

// Indexer 文档摄取：切分、向量化并写入向量索引
// Postgres 侧的分片文本由调用方负责持久化。
type Indexer struct {
	embedder embedding.Embedder
	vector   VectorRepository

	embeddingBatchSize int
	chunkSizeRunes     int
	chunkOverlapRunes  int
}

func NewIndexer(embedder embedding.Embedder, vectorRepo VectorRepository, embeddingBatchSize int) *Indexer {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vectorRepo,
		embeddingBatchSize: bs,
		chunkSizeRunes:     defaultChunkSizeRunes,
		chunkOverlapRunes:  defaultChunkOverlapRunes,
	}
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil
}

func (i *Indexer) ensureReady(ctx context.Context) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	return i.vector.EnsureChunksCollection(ctx)
}

// IndexDocument 切分文档正文并写入向量索引，返回待持久化的分片实体。
// 重复摄取同一文档会先清除旧分片。
func (i *Indexer) IndexDocument(ctx context.Context, workspaceID string, doc *entity.Document) ([]*entity.Chunk, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, fmt.Errorf("workspace_id is required")
	}
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if strings.TrimSpace(doc.ID) == "" {
		return nil, fmt.Errorf("document.id is required")
	}
	if !i.Enabled() {
		return nil, ErrVectorDisabled
	}
	if err := i.ensureReady(ctx); err != nil {
		return nil, err
	}

	if err := i.vector.DeleteChunksByDocument(ctx, workspaceID, doc.ID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(doc.Content)
	if content == "" {
		// 空正文不写索引；但会先执行删除以避免旧分片残留。
		return nil, nil
	}

	pieces := splitByRunes(content, i.chunkSizeRunes, i.chunkOverlapRunes)
	if len(pieces) == 0 {
		return nil, nil
	}

	title := strings.TrimSpace(doc.Title)
	embedInputs := make([]string, 0, len(pieces))
	vectorChunks := make([]*VectorChunk, 0, len(pieces))
	chunks := make([]*entity.Chunk, 0, len(pieces))

	for idx, piece := range pieces {
		chunkID := uuid.NewString()

		embedText := piece
		if title != "" {
			embedText = title + "\n" + piece
		}
		embedInputs = append(embedInputs, embedText)

		vectorChunks = append(vectorChunks, &VectorChunk{
			ChunkID:       chunkID,
			DocumentID:    doc.ID,
			DocumentTitle: title,
			Source:        doc.Source,
			ChunkIndex:    idx,
			Content:       piece,
		})
		chunks = append(chunks, &entity.Chunk{
			ID:          chunkID,
			DocumentID:  doc.ID,
			WorkspaceID: workspaceID,
			Content:     piece,
			ChunkIndex:  idx,
			TokenCount:  utf8.RuneCountInString(piece),
		})
	}

	vectors, err := i.embedBatch(ctx, embedInputs)
	if err != nil {
		return nil, err
	}
	for idx := range vectorChunks {
		vectorChunks[idx].Vector = vectors[idx]
	}
	if err := i.vector.InsertChunks(ctx, workspaceID, vectorChunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// RemoveDocument 清除文档在向量索引中的全部分片。
// 向量索引未启用时视为无事可做。
func (i *Indexer) RemoveDocument(ctx context.Context, workspaceID, documentID string) error {
	if i == nil || i.vector == nil {
		return nil
	}
	return i.vector.DeleteChunksByDocument(ctx, workspaceID, documentID)
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if i == nil || i.embedder == nil {
		return nil, ErrVectorDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := i.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}
