// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type DocumentRepository struct {
	client *Client
}

func NewDocumentRepository(client *Client) *DocumentRepository {
	return &DocumentRepository{client: client}
}

func (r *DocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(document).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, workspaceID, id string) (*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var document entity.Document
	if err := db.First(&document, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &document, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, workspaceID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		Delete(&entity.Document{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ListSummaries 文档列表（含分片数），按创建时间降序
func (r *DocumentRepository) ListSummaries(ctx context.Context, workspaceID string, pagination repository.Pagination) (*repository.PagedResult[*entity.DocumentSummary], error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.ListSummaries")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var total int64
	if err := db.Model(&entity.Document{}).
		Where("workspace_id = ?", workspaceID).
		Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	var summaries []*entity.DocumentSummary
	if err := db.Model(&entity.Document{}).
		Select("documents.id, documents.title, documents.source, documents.metadata, documents.created_at, documents.updated_at, COUNT(chunks.id) AS chunk_count").
		Joins("LEFT JOIN chunks ON chunks.document_id = documents.id").
		Where("documents.workspace_id = ?", workspaceID).
		Group("documents.id").
		Order("documents.created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Scan(&summaries).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list document summaries: %w", err)
	}

	return repository.NewPagedResult(summaries, total, pagination), nil
}
