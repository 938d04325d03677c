// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type ChunkRepository struct {
	client *Client
}

func NewChunkRepository(client *Client) *ChunkRepository {
	return &ChunkRepository{client: client}
}

func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []*entity.Chunk) error {
	ctx, span := tracer.Start(ctx, "postgres.ChunkRepository.CreateBatch")
	defer span.End()

	if len(chunks) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.CreateInBatches(chunks, 100).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chunks: %w", err)
	}
	return nil
}

func (r *ChunkRepository) GetByIDs(ctx context.Context, workspaceID string, ids []string) ([]*entity.Chunk, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChunkRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var chunks []*entity.Chunk
	if err := db.Where("workspace_id = ? AND id IN ?", workspaceID, ids).
		Find(&chunks).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	return chunks, nil
}

// KeywordSearch 基于 Postgres 全文索引的关键词检索。
// ts_rank 经 r/(r+1) 压缩到 [0,1)，与向量相似度同量纲。
func (r *ChunkRepository) KeywordSearch(ctx context.Context, workspaceID, query string, limit int) ([]*repository.KeywordMatch, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChunkRepository.KeywordSearch")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var matches []*repository.KeywordMatch
	err := db.Raw(`
		SELECT c.id            AS chunk_id,
		       c.document_id   AS document_id,
		       d.title         AS document_title,
		       d.source        AS source,
		       c.content       AS content,
		       r.rank / (r.rank + 1) AS score
		FROM chunks c
		JOIN documents d ON d.id = c.document_id,
		LATERAL (
			SELECT ts_rank(to_tsvector('simple', c.content),
			               plainto_tsquery('simple', ?)) AS rank
		) r
		WHERE c.workspace_id = ?
		  AND to_tsvector('simple', c.content) @@ plainto_tsquery('simple', ?)
		ORDER BY score DESC, c.id ASC
		LIMIT ?`,
		query, workspaceID, query, limit,
	).Scan(&matches).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to keyword search chunks: %w", err)
	}
	return matches, nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, workspaceID, documentID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChunkRepository.DeleteByDocument")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("workspace_id = ? AND document_id = ?", workspaceID, documentID).
		Delete(&entity.Chunk{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}
