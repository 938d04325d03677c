// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"rag-chat-api/internal/domain/entity"
)

type OrganizationRepository interface {
	Create(ctx context.Context, organization *entity.Organization) error
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Organization, error)
	Update(ctx context.Context, organization *entity.Organization) error
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Organization], error)
}

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *entity.Workspace) error
	GetByID(ctx context.Context, id string) (*entity.Workspace, error)
	Update(ctx context.Context, workspace *entity.Workspace) error
	Delete(ctx context.Context, id string) error
	ListByOrganization(ctx context.Context, organizationID string, pagination Pagination) (*PagedResult[*entity.Workspace], error)
	IncrementRequestCount(ctx context.Context, id string) error
}

type AgentRepository interface {
	Create(ctx context.Context, agent *entity.Agent) error
	GetByID(ctx context.Context, workspaceID, id string) (*entity.Agent, error)
	Update(ctx context.Context, agent *entity.Agent) error
	Delete(ctx context.Context, workspaceID, id string) error
	ListByWorkspace(ctx context.Context, workspaceID string, pagination Pagination) (*PagedResult[*entity.Agent], error)
}
