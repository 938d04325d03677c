// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"rag-chat-api/internal/domain/entity"
)

type APIKeyRepository interface {
	Create(ctx context.Context, key *entity.APIKey) error
	// GetByHash 按哈希查找密钥，不存在返回 nil, nil
	GetByHash(ctx context.Context, hash string) (*entity.APIKey, error)
	GetByID(ctx context.Context, organizationID, id string) (*entity.APIKey, error)
	Revoke(ctx context.Context, organizationID, id string) error
	TouchLastUsed(ctx context.Context, id string) error
	ListByWorkspace(ctx context.Context, workspaceID string, pagination Pagination) (*PagedResult[*entity.APIKey], error)
}
