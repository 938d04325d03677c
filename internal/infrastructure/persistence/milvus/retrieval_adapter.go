package milvus

import (
	"context"

	"rag-chat-api/internal/application/retrieval"
)

// RetrievalVectorRepository 适配 Milvus 仓储到应用层向量检索 port
type RetrievalVectorRepository struct {
	repo *Repository
}

func NewRetrievalVectorRepository(repo *Repository) *RetrievalVectorRepository {
	return &RetrievalVectorRepository{repo: repo}
}

var _ retrieval.VectorRepository = (*RetrievalVectorRepository)(nil)

func (r *RetrievalVectorRepository) EnsureChunksCollection(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.EnsureChunksCollection(ctx)
}

func (r *RetrievalVectorRepository) SearchChunks(ctx context.Context, workspaceID string, vector []float32, limit int) ([]*retrieval.VectorHit, error) {
	if r == nil || r.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}

	out, err := r.repo.SearchChunks(ctx, &SearchParams{
		WorkspaceID: workspaceID,
		QueryVector: vector,
		TopK:        limit,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]*retrieval.VectorHit, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		hits = append(hits, &retrieval.VectorHit{
			ChunkID:       v.ID,
			DocumentID:    v.DocumentID,
			DocumentTitle: v.DocumentTitle,
			Source:        v.Source,
			Content:       v.Content,
			Score:         similarity(v.Score),
		})
	}
	return hits, nil
}

func (r *RetrievalVectorRepository) InsertChunks(ctx context.Context, workspaceID string, chunks []*retrieval.VectorChunk) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	if len(chunks) == 0 {
		return nil
	}

	out := make([]*Chunk, 0, len(chunks))
	for i := range chunks {
		c := chunks[i]
		if c == nil {
			continue
		}
		out = append(out, &Chunk{
			ID:            c.ChunkID,
			Vector:        c.Vector,
			WorkspaceID:   workspaceID,
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
			Source:        c.Source,
			ChunkIndex:    int64(c.ChunkIndex),
			Content:       c.Content,
		})
	}
	return r.repo.InsertChunks(ctx, workspaceID, out)
}

func (r *RetrievalVectorRepository) DeleteChunksByDocument(ctx context.Context, workspaceID, documentID string) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.DeleteChunksByDocument(ctx, workspaceID, documentID)
}

// similarity 将 COSINE 得分钳制到 [0,1]。
// Milvus 在 COSINE 度量下返回的即是相似度，越大越相似，直接透传。
func similarity(score float32) float64 {
	s := float64(score)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
