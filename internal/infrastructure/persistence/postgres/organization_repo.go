// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type OrganizationRepository struct {
	client *Client
}

func NewOrganizationRepository(client *Client) *OrganizationRepository {
	return &OrganizationRepository{client: client}
}

func (r *OrganizationRepository) Create(ctx context.Context, organization *entity.Organization) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(organization).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var organization entity.Organization
	if err := db.First(&organization, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &organization, nil
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.GetBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var organization entity.Organization
	if err := db.First(&organization, "slug = ?", slug).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	return &organization, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, organization *entity.Organization) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(organization).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Organization], error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Organization{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count organizations: %w", err)
	}

	var organizations []*entity.Organization
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&organizations).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return repository.NewPagedResult(organizations, total, pagination), nil
}
