// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 规范化分页参数
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// Offset 计算偏移量
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Limit 返回限制数
func (r *PageRequest) Limit() int {
	return r.PageSize
}

// BindPage 从 Gin Context 绑定分页参数
func BindPage(c *gin.Context) PageRequest {
	page := parseIntWithDefault(c.Query("page"), 1)
	pageSize := parseIntWithDefault(c.Query("page_size"), 20)

	// 兼容 limit/offset 风格的查询参数
	if limit := parseIntWithDefault(c.Query("limit"), 0); limit > 0 {
		pageSize = limit
		if offset := parseIntWithDefault(c.Query("offset"), 0); offset > 0 {
			page = offset/limit + 1
		}
	}

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
	}
	req.Normalize()
	return req
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindSessionID 从 URI 绑定会话 ID
func BindSessionID(c *gin.Context) string {
	return c.Param("sid")
}

// BindOrganizationID 从 URI 绑定组织 ID
func BindOrganizationID(c *gin.Context) string {
	return c.Param("oid")
}

// BindWorkspaceID 从 URI 绑定工作空间 ID
func BindWorkspaceID(c *gin.Context) string {
	return c.Param("wid")
}

// BindAgentID 从 URI 绑定智能体 ID
func BindAgentID(c *gin.Context) string {
	return c.Param("aid")
}

// BindDocumentID 从 URI 绑定文档 ID
func BindDocumentID(c *gin.Context) string {
	return c.Param("did")
}

// BindAPIKeyID 从 URI 绑定 API Key ID
func BindAPIKeyID(c *gin.Context) string {
	return c.Param("kid")
}
