// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type AgentRepository struct {
	client *Client
}

func NewAgentRepository(client *Client) *AgentRepository {
	return &AgentRepository{client: client}
}

func (r *AgentRepository) Create(ctx context.Context, agent *entity.Agent) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(agent).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) GetByID(ctx context.Context, workspaceID, id string) (*entity.Agent, error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var agent entity.Agent
	if err := db.First(&agent, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}

func (r *AgentRepository) Update(ctx context.Context, agent *entity.Agent) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(agent).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) Delete(ctx context.Context, workspaceID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("id = ? AND workspace_id = ?", id, workspaceID).
		Delete(&entity.Agent{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) ListByWorkspace(ctx context.Context, workspaceID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Agent], error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.ListByWorkspace")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Agent{}).Where("workspace_id = ?", workspaceID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count agents: %w", err)
	}

	var agents []*entity.Agent
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&agents).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return repository.NewPagedResult(agents, total, pagination), nil
}
