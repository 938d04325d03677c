// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	"rag-chat-api/pkg/logger"
)

// ScopeContextKey 请求作用域上下文 Key 类型
type ScopeContextKey string

const (
	// WorkspaceIDKey 工作空间 ID 上下文 Key
	WorkspaceIDKey ScopeContextKey = "workspace_id"
	// OrgIDKey 组织 ID 上下文 Key
	OrgIDKey ScopeContextKey = "org_id"
)

// APIKeyAuth API Key 认证中间件。
// 解析 Bearer Key，校验有效性后把工作空间作用域注入请求上下文。
// 所有下游检索与会话操作都从这里拿到 workspace_id，不信任请求体。
func APIKeyAuth(keys repository.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		plaintext := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(plaintext, "rck_") {
			abortUnauthorized(c, "invalid api key")
			return
		}

		ctx := c.Request.Context()
		key, err := keys.GetByHash(ctx, entity.HashAPIKey(plaintext))
		if err != nil {
			logger.Error(ctx, "failed to look up api key", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":     500,
				"message":  "failed to verify api key",
				"trace_id": c.GetString("trace_id"),
			})
			return
		}
		if key == nil || !key.IsActive || key.Expired(time.Now()) {
			abortUnauthorized(c, "invalid api key")
			return
		}

		c.Set("workspace_id", key.WorkspaceID)
		c.Set("org_id", key.OrganizationID)
		c.Set("api_key_id", key.ID)

		ctx = context.WithValue(ctx, WorkspaceIDKey, key.WorkspaceID)
		ctx = context.WithValue(ctx, OrgIDKey, key.OrganizationID)
		ctx = logger.WithContext(ctx, logger.WorkspaceIDKey, key.WorkspaceID)
		ctx = logger.WithContext(ctx, logger.OrgIDKey, key.OrganizationID)
		c.Request = c.Request.WithContext(ctx)

		// 最后使用时间尽力更新，失败不阻断请求
		if err := keys.TouchLastUsed(ctx, key.ID); err != nil {
			logger.Warn(ctx, "failed to touch api key", "error", err.Error())
		}

		c.Next()
	}
}

// GetWorkspaceID 从 context 中获取工作空间 ID
func GetWorkspaceID(ctx context.Context) string {
	if v := ctx.Value(WorkspaceIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetOrgID 从 context 中获取组织 ID
func GetOrgID(ctx context.Context) string {
	if v := ctx.Value(OrgIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetWorkspaceIDFromGin 从 Gin Context 中获取工作空间 ID
func GetWorkspaceIDFromGin(c *gin.Context) string {
	return c.GetString("workspace_id")
}

// GetOrgIDFromGin 从 Gin Context 中获取组织 ID
func GetOrgIDFromGin(c *gin.Context) string {
	return c.GetString("org_id")
}
