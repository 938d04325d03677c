// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type WorkspaceRepository struct {
	client *Client
}

func NewWorkspaceRepository(client *Client) *WorkspaceRepository {
	return &WorkspaceRepository{client: client}
}

func (r *WorkspaceRepository) Create(ctx context.Context, workspace *entity.Workspace) error {
	ctx, span := tracer.Start(ctx, "postgres.WorkspaceRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(workspace).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*entity.Workspace, error) {
	ctx, span := tracer.Start(ctx, "postgres.WorkspaceRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var workspace entity.Workspace
	if err := db.First(&workspace, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &workspace, nil
}

func (r *WorkspaceRepository) Update(ctx context.Context, workspace *entity.Workspace) error {
	ctx, span := tracer.Start(ctx, "postgres.WorkspaceRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(workspace).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.WorkspaceRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Workspace{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) ListByOrganization(ctx context.Context, organizationID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Workspace], error) {
	ctx, span := tracer.Start(ctx, "postgres.WorkspaceRepository.ListByOrganization")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Workspace{}).Where("organization_id = ?", organizationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count workspaces: %w", err)
	}

	var workspaces []*entity.Workspace
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&workspaces).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	return repository.NewPagedResult(workspaces, total, pagination), nil
}

func (r *WorkspaceRepository) IncrementRequestCount(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.WorkspaceRepository.IncrementRequestCount")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Workspace{}).
		Where("id = ?", id).
		UpdateColumn("request_count", gorm.Expr("request_count + 1")).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to increment request count: %w", err)
	}
	return nil
}
