// Package entity 定义领域实体
package entity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// APIKey 工作空间访问凭证
// 仅存储 SHA-256 哈希，明文只在创建时返回一次。
type APIKey struct {
	ID             string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID string     `json:"organization_id" gorm:"type:uuid;index;not null"`
	WorkspaceID    string     `json:"workspace_id" gorm:"type:uuid;index;not null"`
	Name           string     `json:"name" gorm:"type:varchar(255);not null"`
	KeyHash        string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	KeyPrefix      string     `json:"key_prefix" gorm:"type:varchar(16);not null"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

// NewAPIKey 创建 API Key，返回实体与明文密钥
func NewAPIKey(organizationID, workspaceID, name string, expiresAt *time.Time) (*APIKey, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", err
	}
	plaintext := "rck_" + hex.EncodeToString(raw)

	key := &APIKey{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		WorkspaceID:    workspaceID,
		Name:           name,
		KeyHash:        HashAPIKey(plaintext),
		KeyPrefix:      plaintext[:12],
		IsActive:       true,
		ExpiresAt:      expiresAt,
		CreatedAt:      time.Now(),
	}
	return key, plaintext, nil
}

// HashAPIKey 计算密钥哈希
func HashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Expired 密钥是否已过期
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}
