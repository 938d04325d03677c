// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type APIKeyRepository struct {
	client *Client
}

func NewAPIKeyRepository(client *Client) *APIKeyRepository {
	return &APIKeyRepository{client: client}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(key).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByHash 按哈希查找密钥，不存在返回 nil, nil
func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*entity.APIKey, error) {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.GetByHash")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var key entity.APIKey
	if err := db.First(&key, "key_hash = ?", hash).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.APIKey, error) {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var key entity.APIKey
	if err := db.First(&key, "id = ? AND organization_id = ?", id, organizationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, organizationID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.Revoke")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.APIKey{}).
		Where("id = ? AND organization_id = ?", id, organizationID).
		Update("is_active", false).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.TouchLastUsed")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) ListByWorkspace(ctx context.Context, workspaceID string, pagination repository.Pagination) (*repository.PagedResult[*entity.APIKey], error) {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.ListByWorkspace")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.APIKey{}).Where("workspace_id = ?", workspaceID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count api keys: %w", err)
	}

	var keys []*entity.APIKey
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&keys).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}

	return repository.NewPagedResult(keys, total, pagination), nil
}
