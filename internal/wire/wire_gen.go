// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/wire"
	"rag-chat-api/internal/application/chat"
	"rag-chat-api/internal/application/retrieval"
	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/repository"
	embedding2 "rag-chat-api/internal/infrastructure/embedding"
	"rag-chat-api/internal/infrastructure/graph"
	"rag-chat-api/internal/infrastructure/llm"
	"rag-chat-api/internal/infrastructure/persistence/milvus"
	"rag-chat-api/internal/infrastructure/persistence/postgres"
	"rag-chat-api/internal/infrastructure/persistence/redis"
	"rag-chat-api/internal/interfaces/http/handler"
	"rag-chat-api/internal/interfaces/http/middleware"
	"rag-chat-api/internal/interfaces/http/router"
	"rag-chat-api/pkg/logger"
)

// Injectors from wire.go:

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	txManager := postgres.NewTxManager(client)
	organizationRepository := postgres.NewOrganizationRepository(client)
	workspaceRepository := postgres.NewWorkspaceRepository(client)
	agentRepository := postgres.NewAgentRepository(client)
	apiKeyRepository := postgres.NewAPIKeyRepository(client)
	sessionRepository := postgres.NewSessionRepository(client)
	messageRepository := postgres.NewMessageRepository(client)
	documentRepository := postgres.NewDocumentRepository(client)
	chunkRepository := postgres.NewChunkRepository(client)
	redisClient, cleanup2, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cache := redis.NewCache(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)
	dataLayer := &DataLayer{
		PgClient:         client,
		TxManager:        txManager,
		OrganizationRepo: organizationRepository,
		WorkspaceRepo:    workspaceRepository,
		AgentRepo:        agentRepository,
		APIKeyRepo:       apiKeyRepository,
		SessionRepo:      sessionRepository,
		MessageRepo:      messageRepository,
		DocumentRepo:     documentRepository,
		ChunkRepo:        chunkRepository,
		RedisClient:      redisClient,
		Cache:            cache,
		RateLimiter:      rateLimiter,
	}
	return dataLayer, func() {
		cleanup2()
		cleanup()
	}, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient, cleanup2, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	milvusClient, cleanup3, err := ProvideMilvusClientOptional(ctx, cfg)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	graphClient, cleanup4, err := ProvideGraphClientOptional(ctx, cfg)
	if err != nil {
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	healthHandler := handler.NewHealthHandler(client, redisClient, milvusClient, graphClient)
	sessionRepository := postgres.NewSessionRepository(client)
	messageRepository := postgres.NewMessageRepository(client)
	agentRepository := postgres.NewAgentRepository(client)
	embedder, err := ProvideEmbedderOptional(ctx, cfg)
	if err != nil {
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	repository := ProvideMilvusRepositoryOptional(milvusClient)
	vectorRepository := ProvideRetrievalVectorRepositoryOptional(repository)
	graphRepository := ProvideGraphRepositoryOptional(graphClient)
	chunkRepository := postgres.NewChunkRepository(client)
	documentRepository := postgres.NewDocumentRepository(client)
	gateway := ProvideRetrievalGateway(cfg, embedder, vectorRepository, graphRepository, chunkRepository, documentRepository)
	einoFactory := llm.NewEinoFactory(cfg)
	agentRunner := ProvideAgentRunner(einoFactory)
	orchestrator := ProvideOrchestrator(sessionRepository, messageRepository, agentRepository, gateway, agentRunner, cfg)
	chatHandler := handler.NewChatHandler(cfg, orchestrator)
	searchHandler := handler.NewSearchHandler(gateway)
	indexer := ProvideRetrievalIndexer(cfg, embedder, vectorRepository)
	documentHandler := handler.NewDocumentHandler(gateway, indexer, documentRepository, chunkRepository)
	sessionHandler := handler.NewSessionHandler(sessionRepository, messageRepository)
	organizationRepository := postgres.NewOrganizationRepository(client)
	workspaceRepository := postgres.NewWorkspaceRepository(client)
	apiKeyRepository := postgres.NewAPIKeyRepository(client)
	cache := redis.NewCache(redisClient)
	adminHandler := handler.NewAdminHandler(organizationRepository, workspaceRepository, agentRepository, apiKeyRepository, cache)
	routerHandlers := router.RouterHandlers{
		Health:   healthHandler,
		Chat:     chatHandler,
		Search:   searchHandler,
		Document: documentHandler,
		Session:  sessionHandler,
		Admin:    adminHandler,
	}
	authConfig := ProvideAuthConfig(cfg)
	rateLimiter := redis.NewRateLimiter(redisClient)
	txManager := postgres.NewTxManager(client)
	routerRouter := router.NewWithDeps(cfg, routerHandlers, authConfig, apiKeyRepository, rateLimiter, txManager)
	return routerRouter, func() {
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
	}, nil
}

// wire.go:

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient         *postgres.Client
	TxManager        *postgres.TxManager
	OrganizationRepo *postgres.OrganizationRepository
	WorkspaceRepo    *postgres.WorkspaceRepository
	AgentRepo        *postgres.AgentRepository
	APIKeyRepo       *postgres.APIKeyRepository
	SessionRepo      *postgres.SessionRepository
	MessageRepo      *postgres.MessageRepository
	DocumentRepo     *postgres.DocumentRepository
	ChunkRepo        *postgres.ChunkRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient, postgres.NewTxManager, postgres.NewOrganizationRepository, postgres.NewWorkspaceRepository, postgres.NewAgentRepository, postgres.NewAPIKeyRepository, postgres.NewSessionRepository, postgres.NewMessageRepository, postgres.NewDocumentRepository, postgres.NewChunkRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient, redis.NewCache, redis.NewRateLimiter, wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MilvusAppSet API 网关可选 Milvus（不可达时不阻塞启动）
var MilvusAppSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideRetrievalVectorRepositoryOptional,
)

// EmbeddingSet 可选 Embedder（不可用时禁用向量检索/索引）
var EmbeddingSet = wire.NewSet(
	ProvideEmbedderOptional,
)

// GraphSet 可选 Neo4j 图谱检索（不可达时禁用图谱检索）
var GraphSet = wire.NewSet(
	ProvideGraphClientOptional,
	ProvideGraphRepositoryOptional,
)

// RetrievalSet 检索网关与文档索引器
var RetrievalSet = wire.NewSet(
	ProvideRetrievalGateway,
	ProvideRetrievalIndexer,
)

// ChatSet 对话编排提供者集合
var ChatSet = wire.NewSet(llm.NewEinoFactory, ProvideAgentRunner,
	ProvideOrchestrator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideAuthConfig, handler.NewHealthHandler, handler.NewChatHandler, handler.NewSearchHandler, handler.NewDocumentHandler, handler.NewSessionHandler, handler.NewAdminHandler, wire.Struct(new(router.RouterHandlers), "*"), router.NewWithDeps,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet, wire.Bind(new(repository.Transactor), new(*postgres.TxManager)), wire.Bind(new(repository.OrganizationRepository), new(*postgres.OrganizationRepository)), wire.Bind(new(repository.WorkspaceRepository), new(*postgres.WorkspaceRepository)), wire.Bind(new(repository.AgentRepository), new(*postgres.AgentRepository)), wire.Bind(new(repository.APIKeyRepository), new(*postgres.APIKeyRepository)), wire.Bind(new(repository.SessionRepository), new(*postgres.SessionRepository)), wire.Bind(new(repository.MessageRepository), new(*postgres.MessageRepository)), wire.Bind(new(repository.DocumentRepository), new(*postgres.DocumentRepository)), wire.Bind(new(repository.ChunkRepository), new(*postgres.ChunkRepository)),
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, vector features disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func ProvideMilvusRepositoryOptional(client *milvus.Client) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

func ProvideRetrievalVectorRepositoryOptional(repo *milvus.Repository) retrieval.VectorRepository {
	if repo == nil {
		return nil
	}
	return milvus.NewRetrievalVectorRepository(repo)
}

func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	embedder, err := embedding2.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, vector features disabled", "error", err.Error())
		return nil, nil
	}
	return embedder, nil
}

func ProvideGraphClientOptional(ctx context.Context, cfg *config.Config) (*graph.Client, func(), error) {
	client, err := graph.NewClient(ctx, &cfg.Graph.Neo4j)
	if err != nil {
		logger.Warn(ctx, "neo4j not available, graph retrieval disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close(context.Background())
	}
	return client, cleanup, nil
}

func ProvideGraphRepositoryOptional(client *graph.Client) retrieval.GraphRepository {
	if client == nil {
		return nil
	}
	return client
}

func ProvideRetrievalGateway(
	cfg *config.Config,
	embedder embedding.Embedder,
	vectorRepo retrieval.VectorRepository,
	graphRepo retrieval.GraphRepository,
	chunks repository.ChunkRepository,
	documents repository.DocumentRepository,
) *retrieval.Gateway {
	return retrieval.NewGateway(embedder, vectorRepo, graphRepo, chunks, documents, cfg.Retrieval)
}

func ProvideRetrievalIndexer(cfg *config.Config, embedder embedding.Embedder, vectorRepo retrieval.VectorRepository) *retrieval.Indexer {
	bs := 0
	if cfg != nil {
		bs = cfg.Embedding.BatchSize
	}
	return retrieval.NewIndexer(embedder, vectorRepo, bs)
}

// ProvideAgentRunner 提供智能体执行器
func ProvideAgentRunner(factory *llm.EinoFactory) chat.AgentRunner {
	return chat.NewRunner(factory, 0)
}

// ProvideOrchestrator 提供对话轮次编排器
func ProvideOrchestrator(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	agents repository.AgentRepository,
	gateway *retrieval.Gateway,
	runner chat.AgentRunner,
	cfg *config.Config,
) *chat.Orchestrator {
	return chat.NewOrchestrator(sessions, messages, agents, gateway, runner, cfg.Chat)
}

// ProvideAuthConfig 提供认证配置
func ProvideAuthConfig(cfg *config.Config) middleware.AuthConfig {
	return middleware.AuthConfig{
		Secret:    cfg.Security.JWT.Secret,
		Issuer:    cfg.Security.JWT.Issuer,
		SkipPaths: middleware.DefaultSkipPaths,
		Enabled:   true,
	}
}
