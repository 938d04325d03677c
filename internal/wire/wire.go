//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/google/wire"

	"rag-chat-api/internal/application/chat"
	"rag-chat-api/internal/application/retrieval"
	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/repository"
	infraembedding "rag-chat-api/internal/infrastructure/embedding"
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

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		EmbeddingSet,
		MilvusAppSet,
		GraphSet,
		RetrievalSet,
		ChatSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewOrganizationRepository,
	postgres.NewWorkspaceRepository,
	postgres.NewAgentRepository,
	postgres.NewAPIKeyRepository,
	postgres.NewSessionRepository,
	postgres.NewMessageRepository,
	postgres.NewDocumentRepository,
	postgres.NewChunkRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
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
var ChatSet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideAgentRunner,
	ProvideOrchestrator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideAuthConfig,
	handler.NewHealthHandler,
	handler.NewChatHandler,
	handler.NewSearchHandler,
	handler.NewDocumentHandler,
	handler.NewSessionHandler,
	handler.NewAdminHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	// 接口绑定
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.OrganizationRepository), new(*postgres.OrganizationRepository)),
	wire.Bind(new(repository.WorkspaceRepository), new(*postgres.WorkspaceRepository)),
	wire.Bind(new(repository.AgentRepository), new(*postgres.AgentRepository)),
	wire.Bind(new(repository.APIKeyRepository), new(*postgres.APIKeyRepository)),
	wire.Bind(new(repository.SessionRepository), new(*postgres.SessionRepository)),
	wire.Bind(new(repository.MessageRepository), new(*postgres.MessageRepository)),
	wire.Bind(new(repository.DocumentRepository), new(*postgres.DocumentRepository)),
	wire.Bind(new(repository.ChunkRepository), new(*postgres.ChunkRepository)),
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

func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
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
	embedder einoembedding.Embedder,
	vectorRepo retrieval.VectorRepository,
	graphRepo retrieval.GraphRepository,
	chunks repository.ChunkRepository,
	documents repository.DocumentRepository,
) *retrieval.Gateway {
	return retrieval.NewGateway(embedder, vectorRepo, graphRepo, chunks, documents, cfg.Retrieval)
}

func ProvideRetrievalIndexer(cfg *config.Config, embedder einoembedding.Embedder, vectorRepo retrieval.VectorRepository) *retrieval.Indexer {
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
