// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	"rag-chat-api/internal/infrastructure/persistence/redis"
	"rag-chat-api/internal/interfaces/http/dto"
	"rag-chat-api/internal/interfaces/http/middleware"
	"rag-chat-api/pkg/logger"
)

// AdminHandler 管理端接口：组织、工作空间、智能体与 API Key
type AdminHandler struct {
	organizations repository.OrganizationRepository
	workspaces    repository.WorkspaceRepository
	agents        repository.AgentRepository
	apiKeys       repository.APIKeyRepository
	cache         *redis.Cache
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(
	organizations repository.OrganizationRepository,
	workspaces repository.WorkspaceRepository,
	agents repository.AgentRepository,
	apiKeys repository.APIKeyRepository,
	cache *redis.Cache,
) *AdminHandler {
	return &AdminHandler{
		organizations: organizations,
		workspaces:    workspaces,
		agents:        agents,
		apiKeys:       apiKeys,
		cache:         cache,
	}
}

// CreateOrganization 创建组织
// @Summary 创建组织
// @Tags Admin
// @Router /admin/organizations [post]
func (h *AdminHandler) CreateOrganization(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	existing, err := h.organizations.GetBySlug(ctx, req.Slug)
	if err != nil {
		logger.Error(ctx, "failed to check organization slug", err)
		dto.InternalError(c, "failed to create organization")
		return
	}
	if existing != nil {
		dto.Conflict(c, "organization slug already exists")
		return
	}

	org := entity.NewOrganization(req.Name, req.Slug)
	if err := h.organizations.Create(ctx, org); err != nil {
		logger.Error(ctx, "failed to create organization", err)
		dto.InternalError(c, "failed to create organization")
		return
	}

	dto.Created(c, dto.ToOrganizationResponse(org))
}

// ListOrganizations 组织列表
// @Summary 组织列表
// @Tags Admin
// @Router /admin/organizations [get]
func (h *AdminHandler) ListOrganizations(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	result, err := h.organizations.List(ctx, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list organizations", err)
		dto.InternalError(c, "failed to list organizations")
		return
	}

	orgs := make([]*dto.OrganizationResponse, 0, len(result.Items))
	for _, o := range result.Items {
		orgs = append(orgs, dto.ToOrganizationResponse(o))
	}
	dto.SuccessWithPage(c, orgs, dto.NewPageMeta(page.Page, page.PageSize, int(result.Total)))
}

// CreateWorkspace 在组织下创建工作空间
// @Summary 创建工作空间
// @Tags Admin
// @Router /admin/organizations/{oid}/workspaces [post]
func (h *AdminHandler) CreateWorkspace(c *gin.Context) {
	ctx := c.Request.Context()
	organizationID := dto.BindOrganizationID(c)

	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	org, err := h.organizations.GetByID(ctx, organizationID)
	if err != nil {
		logger.Error(ctx, "failed to load organization", err)
		dto.InternalError(c, "failed to create workspace")
		return
	}
	if org == nil {
		dto.NotFound(c, "organization not found")
		return
	}

	workspace := entity.NewWorkspace(organizationID, req.Name, req.Slug)
	workspace.Settings = req.Settings
	if err := h.workspaces.Create(ctx, workspace); err != nil {
		logger.Error(ctx, "failed to create workspace", err)
		dto.InternalError(c, "failed to create workspace")
		return
	}

	dto.Created(c, dto.ToWorkspaceResponse(workspace))
}

// ListWorkspaces 组织下的工作空间列表
// @Summary 工作空间列表
// @Tags Admin
// @Router /admin/organizations/{oid}/workspaces [get]
func (h *AdminHandler) ListWorkspaces(c *gin.Context) {
	ctx := c.Request.Context()
	organizationID := dto.BindOrganizationID(c)
	page := dto.BindPage(c)

	result, err := h.workspaces.ListByOrganization(ctx, organizationID,
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list workspaces", err)
		dto.InternalError(c, "failed to list workspaces")
		return
	}

	workspaces := make([]*dto.WorkspaceResponse, 0, len(result.Items))
	for _, w := range result.Items {
		workspaces = append(workspaces, dto.ToWorkspaceResponse(w))
	}
	dto.SuccessWithPage(c, workspaces, dto.NewPageMeta(page.Page, page.PageSize, int(result.Total)))
}

// DeleteWorkspace 删除工作空间
// @Summary 删除工作空间
// @Tags Admin
// @Router /admin/workspaces/{wid} [delete]
func (h *AdminHandler) DeleteWorkspace(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)

	if err := h.workspaces.Delete(ctx, workspaceID); err != nil {
		logger.Error(ctx, "failed to delete workspace", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to delete workspace")
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateWorkspace(ctx, workspaceID); err != nil {
			logger.Warn(ctx, "failed to invalidate workspace cache", "workspace_id", workspaceID, "error", err.Error())
		}
	}
	dto.NoContent(c)
}

// CreateAgent 在工作空间下创建智能体
// @Summary 创建智能体
// @Tags Admin
// @Router /admin/workspaces/{wid}/agents [post]
func (h *AdminHandler) CreateAgent(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)

	var req dto.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	agent := entity.NewAgent(workspaceID, req.Name, req.SystemPrompt)
	agent.ModelConfig = req.ModelConfig
	if err := h.agents.Create(ctx, agent); err != nil {
		logger.Error(ctx, "failed to create agent", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to create agent")
		return
	}

	dto.Created(c, dto.ToAgentResponse(agent))
}

// UpdateAgent 更新智能体配置
// @Summary 更新智能体
// @Tags Admin
// @Router /admin/workspaces/{wid}/agents/{aid} [put]
func (h *AdminHandler) UpdateAgent(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)
	agentID := dto.BindAgentID(c)

	var req dto.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	agent, err := h.agents.GetByID(ctx, workspaceID, agentID)
	if err != nil {
		logger.Error(ctx, "failed to load agent", err, "agent_id", agentID)
		dto.InternalError(c, "failed to update agent")
		return
	}
	if agent == nil {
		dto.NotFound(c, "agent not found")
		return
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.SystemPrompt != nil {
		agent.SystemPrompt = *req.SystemPrompt
	}
	if len(req.ModelConfig) > 0 {
		agent.ModelConfig = req.ModelConfig
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}

	if err := h.agents.Update(ctx, agent); err != nil {
		logger.Error(ctx, "failed to update agent", err, "agent_id", agentID)
		dto.InternalError(c, "failed to update agent")
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateAgent(ctx, workspaceID, agentID); err != nil {
			logger.Warn(ctx, "failed to invalidate agent cache", "agent_id", agentID, "error", err.Error())
		}
	}

	dto.Success(c, dto.ToAgentResponse(agent))
}

// ListAgents 工作空间下的智能体列表
// @Summary 智能体列表
// @Tags Admin
// @Router /admin/workspaces/{wid}/agents [get]
func (h *AdminHandler) ListAgents(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)
	page := dto.BindPage(c)

	result, err := h.agents.ListByWorkspace(ctx, workspaceID,
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list agents", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to list agents")
		return
	}

	agents := make([]*dto.AgentResponse, 0, len(result.Items))
	for _, a := range result.Items {
		agents = append(agents, dto.ToAgentResponse(a))
	}
	dto.SuccessWithPage(c, agents, dto.NewPageMeta(page.Page, page.PageSize, int(result.Total)))
}

// DeleteAgent 删除智能体
// @Summary 删除智能体
// @Tags Admin
// @Router /admin/workspaces/{wid}/agents/{aid} [delete]
func (h *AdminHandler) DeleteAgent(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)
	agentID := dto.BindAgentID(c)

	if err := h.agents.Delete(ctx, workspaceID, agentID); err != nil {
		logger.Error(ctx, "failed to delete agent", err, "agent_id", agentID)
		dto.InternalError(c, "failed to delete agent")
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateAgent(ctx, workspaceID, agentID); err != nil {
			logger.Warn(ctx, "failed to invalidate agent cache", "agent_id", agentID, "error", err.Error())
		}
	}
	dto.NoContent(c)
}

// CreateAPIKey 签发 API Key，明文仅此一次返回
// @Summary 签发 API Key
// @Tags Admin
// @Router /admin/workspaces/{wid}/keys [post]
func (h *AdminHandler) CreateAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)

	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	workspace, err := h.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		logger.Error(ctx, "failed to load workspace", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to create api key")
		return
	}
	if workspace == nil {
		dto.NotFound(c, "workspace not found")
		return
	}

	key, plaintext, err := entity.NewAPIKey(workspace.OrganizationID, workspaceID, req.Name, req.ExpiresAt)
	if err != nil {
		logger.Error(ctx, "failed to generate api key", err)
		dto.InternalError(c, "failed to create api key")
		return
	}
	if err := h.apiKeys.Create(ctx, key); err != nil {
		logger.Error(ctx, "failed to persist api key", err)
		dto.InternalError(c, "failed to create api key")
		return
	}

	dto.Created(c, &dto.APIKeyCreatedResponse{
		APIKeyResponse: *dto.ToAPIKeyResponse(key),
		Key:            plaintext,
	})
}

// ListAPIKeys 工作空间下的 API Key 列表
// @Summary API Key 列表
// @Tags Admin
// @Router /admin/workspaces/{wid}/keys [get]
func (h *AdminHandler) ListAPIKeys(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := dto.BindWorkspaceID(c)
	page := dto.BindPage(c)

	result, err := h.apiKeys.ListByWorkspace(ctx, workspaceID,
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list api keys", err, "workspace_id", workspaceID)
		dto.InternalError(c, "failed to list api keys")
		return
	}

	keys := make([]*dto.APIKeyResponse, 0, len(result.Items))
	for _, k := range result.Items {
		keys = append(keys, dto.ToAPIKeyResponse(k))
	}
	dto.SuccessWithPage(c, keys, dto.NewPageMeta(page.Page, page.PageSize, int(result.Total)))
}

// RevokeAPIKey 吊销 API Key
// @Summary 吊销 API Key
// @Tags Admin
// @Router /admin/keys/{kid} [delete]
func (h *AdminHandler) RevokeAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	organizationID := middleware.GetOrgIDFromGin(c)
	keyID := dto.BindAPIKeyID(c)

	key, err := h.apiKeys.GetByID(ctx, organizationID, keyID)
	if err != nil {
		logger.Error(ctx, "failed to load api key", err, "key_id", keyID)
		dto.InternalError(c, "failed to revoke api key")
		return
	}
	if key == nil {
		dto.NotFound(c, "api key not found")
		return
	}

	if err := h.apiKeys.Revoke(ctx, organizationID, keyID); err != nil {
		logger.Error(ctx, "failed to revoke api key", err, "key_id", keyID)
		dto.InternalError(c, "failed to revoke api key")
		return
	}
	dto.NoContent(c)
}
