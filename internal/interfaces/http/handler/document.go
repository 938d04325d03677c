// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rag-chat-api/internal/application/retrieval"
	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	"rag-chat-api/internal/interfaces/http/dto"
	"rag-chat-api/internal/interfaces/http/middleware"
	"rag-chat-api/pkg/logger"
)

// DocumentHandler 文档接口：列表、摄取与删除
type DocumentHandler struct {
	gateway   *retrieval.Gateway
	indexer   *retrieval.Indexer
	documents repository.DocumentRepository
	chunks    repository.ChunkRepository
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(
	gateway *retrieval.Gateway,
	indexer *retrieval.Indexer,
	documents repository.DocumentRepository,
	chunks repository.ChunkRepository,
) *DocumentHandler {
	return &DocumentHandler{
		gateway:   gateway,
		indexer:   indexer,
		documents: documents,
		chunks:    chunks,
	}
}

// ListDocuments 工作空间文档列表
// @Summary 文档列表
// @Tags Document
// @Produce json
// @Param limit query int false "每页数量"
// @Param offset query int false "偏移量"
// @Success 200 {object} dto.Response[[]dto.DocumentResponse]
// @Router /v1/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := middleware.GetWorkspaceIDFromGin(c)
	page := dto.BindPage(c)

	result, err := h.gateway.ListDocuments(ctx, workspaceID,
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list documents", err, "workspace_id", workspaceID)
		writeAppError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToDocumentResponses(result.Items),
		dto.NewPageMeta(page.Page, page.PageSize, int(result.Total)))
}

// IngestDocument 文档摄取：落库正文、切分、向量化并写入索引
// @Summary 文档摄取
// @Tags Document
// @Accept json
// @Produce json
// @Param wid path string true "工作空间 ID"
// @Param body body dto.IngestDocumentRequest true "摄取请求"
// @Success 201 {object} dto.Response[dto.IngestDocumentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /admin/workspaces/{wid}/documents [post]
func (h *DocumentHandler) IngestDocument(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)

	var req dto.IngestDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	doc := &entity.Document{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Source:      req.Source,
		Content:     req.Content,
		Metadata:    req.Metadata,
	}

	if err := h.documents.Create(ctx, doc); err != nil {
		logger.Error(ctx, "failed to create document", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to create document")
		return
	}

	chunks, err := h.indexer.IndexDocument(ctx, workspaceID, doc)
	if err != nil {
		if errors.Is(err, retrieval.ErrVectorDisabled) {
			dto.ServiceUnavailable(c, "vector indexing unavailable")
			return
		}
		logger.Error(ctx, "failed to index document", err,
			"workspace_id", workspaceID, "document_id", doc.ID)
		dto.InternalError(c, "failed to index document")
		return
	}

	if len(chunks) > 0 {
		if err := h.chunks.CreateBatch(ctx, chunks); err != nil {
			logger.Error(ctx, "failed to persist chunks", err,
				"workspace_id", workspaceID, "document_id", doc.ID)
			dto.InternalError(c, "failed to persist chunks")
			return
		}
	}

	dto.Created(c, &dto.IngestDocumentResponse{
		ID:         doc.ID,
		Title:      doc.Title,
		ChunkCount: len(chunks),
	})
}

// DeleteDocument 删除文档及其全部分片（Postgres 与向量索引）
// @Summary 删除文档
// @Tags Document
// @Produce json
// @Param wid path string true "工作空间 ID"
// @Param did path string true "文档 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/workspaces/{wid}/documents/{did} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)
	documentID := dto.BindDocumentID(c)

	doc, err := h.documents.GetByID(ctx, workspaceID, documentID)
	if err != nil {
		logger.Error(ctx, "failed to load document", err, "document_id", documentID)
		dto.InternalError(c, "failed to load document")
		return
	}
	if doc == nil {
		dto.NotFound(c, "document not found")
		return
	}

	if err := h.indexer.RemoveDocument(ctx, workspaceID, documentID); err != nil {
		logger.Error(ctx, "failed to remove document vectors", err, "document_id", documentID)
		dto.InternalError(c, "failed to delete document")
		return
	}
	if err := h.chunks.DeleteByDocument(ctx, workspaceID, documentID); err != nil {
		logger.Error(ctx, "failed to delete chunks", err, "document_id", documentID)
		dto.InternalError(c, "failed to delete document")
		return
	}
	if err := h.documents.Delete(ctx, workspaceID, documentID); err != nil {
		logger.Error(ctx, "failed to delete document", err, "document_id", documentID)
		dto.InternalError(c, "failed to delete document")
		return
	}

	dto.NoContent(c)
}
