// Package router 提供 HTTP 路由配置
package router

import (
	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/repository"
	"rag-chat-api/internal/interfaces/http/handler"
	"rag-chat-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config

	handlers    RouterHandlers
	authCfg     middleware.AuthConfig
	apiKeys     repository.APIKeyRepository
	rateLimiter middleware.RateLimiter
	tx          repository.Transactor
}

// RouterHandlers 路由处理器集合
type RouterHandlers struct {
	Health   *handler.HealthHandler
	Chat     *handler.ChatHandler
	Search   *handler.SearchHandler
	Document *handler.DocumentHandler
	Session  *handler.SessionHandler
	Admin    *handler.AdminHandler
}

// NewWithDeps 创建带完整依赖的路由器
func NewWithDeps(
	cfg *config.Config,
	handlers RouterHandlers,
	authCfg middleware.AuthConfig,
	apiKeys repository.APIKeyRepository,
	rateLimiter middleware.RateLimiter,
	tx repository.Transactor,
) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:      gin.New(),
		cfg:         cfg,
		handlers:    handlers,
		authCfg:     authCfg,
		apiKeys:     apiKeys,
		rateLimiter: rateLimiter,
		tx:          tx,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置全局中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 访问审计日志
	r.engine.Use(middleware.Audit())
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  r.cfg.Security.RateLimit.Enabled,
		Requests: r.cfg.Security.RateLimit.Requests,
		Window:   r.cfg.Security.RateLimit.Window,
	}, r.rateLimiter)

	// API v1：API Key 认证（工作空间作用域）+ 限流
	v1 := r.engine.Group("/v1")
	v1.Use(middleware.APIKeyAuth(r.apiKeys))
	v1.Use(rateLimit)
	RegisterV1Routes(v1, r.handlers)

	// 管理端：JWT 认证 + 管理员角色 + 请求级事务
	admin := r.engine.Group("/admin")
	admin.Use(middleware.Auth(r.authCfg))
	admin.Use(middleware.RequireAdmin())
	admin.Use(rateLimit)
	admin.Use(middleware.DBTransaction(r.tx))
	RegisterAdminRoutes(admin, r.handlers)
}
