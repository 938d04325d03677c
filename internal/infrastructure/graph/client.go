// Package graph 提供 Neo4j 知识图谱访问层实现
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rag-chat-api/internal/application/retrieval"
	"rag-chat-api/internal/config"
)

var tracer = otel.Tracer("graph")

// searchFactsCypher 按工作空间过滤的事实检索。
// group_id 过滤在 Cypher 内完成，不依赖调用方拼接，避免跨租户读取。
const searchFactsCypher = `
MATCH (n:Entity {group_id: $workspace_id})-[r:RELATES_TO {group_id: $workspace_id}]-(m:Entity {group_id: $workspace_id})
WHERE toLower(r.fact) CONTAINS toLower($query)
RETURN r.uuid AS uuid, r.fact AS fact, r.valid_at AS valid_at, r.invalid_at AS invalid_at
ORDER BY r.created_at DESC
LIMIT $limit`

// Client Neo4j 客户端
type Client struct {
	driver neo4j.DriverWithContext
	config *config.Neo4jConfig
}

// NewClient 创建 Neo4j 客户端
func NewClient(ctx context.Context, cfg *config.Neo4jConfig) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Client{
		driver: driver,
		config: cfg,
	}, nil
}

// Close 关闭 Neo4j 连接
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// HealthCheck 健康检查
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "graph.HealthCheck")
	defer span.End()

	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// SearchFacts 检索工作空间内与查询相关的事实
func (c *Client) SearchFacts(ctx context.Context, workspaceID, query string, limit int) ([]*retrieval.GraphFact, error) {
	if c == nil || c.driver == nil {
		return nil, retrieval.ErrGraphDisabled
	}
	ctx, span := tracer.Start(ctx, "graph.SearchFacts",
		trace.WithAttributes(
			attribute.String("workspace_id", workspaceID),
			attribute.Int("limit", limit),
		))
	defer span.End()

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	result, err := neo4j.ExecuteQuery(ctx, c.driver, searchFactsCypher,
		map[string]any{
			"workspace_id": workspaceID,
			"query":        query,
			"limit":        limit,
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.config.Database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}

	facts := make([]*retrieval.GraphFact, 0, len(result.Records))
	for _, record := range result.Records {
		fact := &retrieval.GraphFact{}

		if v, ok := record.Get("uuid"); ok {
			if s, ok := v.(string); ok {
				fact.UUID = s
			}
		}
		if v, ok := record.Get("fact"); ok {
			if s, ok := v.(string); ok {
				fact.Fact = s
			}
		}
		fact.ValidAt = recordTime(record, "valid_at")
		fact.InvalidAt = recordTime(record, "invalid_at")

		if fact.Fact == "" {
			continue
		}
		facts = append(facts, fact)
	}

	span.SetAttributes(attribute.Int("result_count", len(facts)))
	return facts, nil
}

// recordTime 提取时间字段，缺失或类型不符返回 nil
func recordTime(record *neo4j.Record, key string) *time.Time {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
