// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"rag-chat-api/internal/domain/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// GetByID 返回未过期的会话，不存在或已过期返回 nil, nil
	GetByID(ctx context.Context, workspaceID, id string) (*entity.Session, error)
	// Touch 顺延会话过期时间
	Touch(ctx context.Context, session *entity.Session) error
	ListByWorkspace(ctx context.Context, workspaceID string, pagination Pagination) (*PagedResult[*entity.Session], error)
	DeleteExpired(ctx context.Context, workspaceID string) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListRecent 返回会话最近的 limit 条消息，按创建时间升序
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*entity.Message, error)
	ListBySession(ctx context.Context, sessionID string, pagination Pagination) (*PagedResult[*entity.Message], error)
}
