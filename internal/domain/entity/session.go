// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session 对话会话
// 过期采用惰性失效：读取时校验 expires_at，过期会话按不存在处理。
type Session struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID string          `json:"workspace_id" gorm:"type:uuid;index;not null"`
	UserID      string          `json:"user_id,omitempty" gorm:"type:varchar(255);index"`
	Metadata    json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	ExpiresAt   time.Time       `json:"expires_at" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

func NewSession(workspaceID, userID string, metadata json.RawMessage, timeout time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Metadata:    metadata,
		ExpiresAt:   now.Add(timeout),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Expired 会话是否已过期
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Message 会话内单条消息，写入后不可变，按创建时间排序
type Message struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   string          `json:"session_id" gorm:"type:uuid;index;not null"`
	WorkspaceID string          `json:"workspace_id" gorm:"type:uuid;index;not null"`
	Role        Role            `json:"role" gorm:"type:varchar(16);not null"`
	Content     string          `json:"content" gorm:"type:text;not null"`
	Metadata    json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

func NewMessage(sessionID, workspaceID string, role Role, content string, metadata json.RawMessage) *Message {
	return &Message{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		WorkspaceID: workspaceID,
		Role:        role,
		Content:     content,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
}
