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

type SessionRepository struct {
	client *Client
}

func NewSessionRepository(client *Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(session).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID 返回未过期的会话；不存在或已过期返回 nil, nil（惰性过期）
func (r *SessionRepository) GetByID(ctx context.Context, workspaceID, id string) (*entity.Session, error) {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var session entity.Session
	if err := db.First(&session, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

// Touch 顺延会话过期时间
func (r *SessionRepository) Touch(ctx context.Context, session *entity.Session) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Touch")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Session{}).
		Where("id = ?", session.ID).
		Updates(map[string]any{
			"expires_at": session.ExpiresAt,
			"updated_at": time.Now(),
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListByWorkspace(ctx context.Context, workspaceID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Session], error) {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.ListByWorkspace")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Session{}).Where("workspace_id = ?", workspaceID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	var sessions []*entity.Session
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&sessions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return repository.NewPagedResult(sessions, total, pagination), nil
}

// DeleteExpired 清理过期会话，返回删除条数
func (r *SessionRepository) DeleteExpired(ctx context.Context, workspaceID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.DeleteExpired")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Where("workspace_id = ? AND expires_at < ?", workspaceID, time.Now()).
		Delete(&entity.Session{})
	if result.Error != nil {
		span.RecordError(result.Error)
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
