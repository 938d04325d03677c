// Package handler 提供 HTTP 请求处理器
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"rag-chat-api/internal/application/retrieval"
	"rag-chat-api/internal/interfaces/http/dto"
	"rag-chat-api/internal/interfaces/http/middleware"
	"rag-chat-api/pkg/logger"
)

// SearchHandler 检索接口
type SearchHandler struct {
	gateway *retrieval.Gateway
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(gateway *retrieval.Gateway) *SearchHandler {
	return &SearchHandler{gateway: gateway}
}

// VectorSearch 语义检索
// @Summary 语义检索
// @Tags Search
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/search/vector [post]
func (h *SearchHandler) VectorSearch(c *gin.Context) {
	h.search(c, "vector", func(in retrieval.SearchInput) ([]*retrieval.SearchResult, error) {
		return h.gateway.VectorSearch(c.Request.Context(), in)
	})
}

// HybridSearch 混合检索（向量 + 关键词）
// @Summary 混合检索
// @Tags Search
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/search/hybrid [post]
func (h *SearchHandler) HybridSearch(c *gin.Context) {
	h.search(c, "hybrid", func(in retrieval.SearchInput) ([]*retrieval.SearchResult, error) {
		return h.gateway.HybridSearch(c.Request.Context(), in)
	})
}

// GraphSearch 知识图谱检索
// @Summary 知识图谱检索
// @Tags Search
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.GraphSearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/search/graph [post]
func (h *SearchHandler) GraphSearch(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	facts, err := h.gateway.GraphSearch(ctx, retrieval.SearchInput{
		WorkspaceID: workspaceID,
		Query:       req.Query,
		Limit:       req.Limit,
	})
	if err != nil {
		logger.Error(ctx, "graph search failed", err, "workspace_id", workspaceID)
		writeAppError(c, err)
		return
	}

	dto.Success(c, dto.ToGraphSearchResponse(facts, time.Since(start)))
}

func (h *SearchHandler) search(c *gin.Context, searchType string, run func(retrieval.SearchInput) ([]*retrieval.SearchResult, error)) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	results, err := run(retrieval.SearchInput{
		WorkspaceID: workspaceID,
		Query:       req.Query,
		Limit:       req.Limit,
		TextWeight:  req.TextWeight,
	})
	if err != nil {
		logger.Error(ctx, "search failed", err, "workspace_id", workspaceID, "search_type", searchType)
		writeAppError(c, err)
		return
	}

	dto.Success(c, dto.ToSearchResponse(results, searchType, time.Since(start)))
}
