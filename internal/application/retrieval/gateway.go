package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel"

	"rag-chat-api/internal/application/ranking"
	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	apperrors "rag-chat-api/pkg/errors"
	"rag-chat-api/pkg/logger"
	"rag-chat-api/pkg/metrics"
)

var tracer = otel.Tracer("application/retrieval")

// Gateway 统一检索入口
// 向量、关键词、图谱三路信号都经此出口，底层故障重试一次后报
// retrieval unavailable；混合检索允许单路降级。
type Gateway struct {
	embedder embedding.Embedder
	vector   VectorRepository
	graph    GraphRepository
	keyword  KeywordRepository
	docs     DocumentLister

	cfg config.RetrievalConfig
}

func NewGateway(
	embedder embedding.Embedder,
	vector VectorRepository,
	graph GraphRepository,
	keyword KeywordRepository,
	docs DocumentLister,
	cfg config.RetrievalConfig,
) *Gateway {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = ranking.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return &Gateway{
		embedder: embedder,
		vector:   vector,
		graph:    graph,
		keyword:  keyword,
		docs:     docs,
		cfg:      cfg,
	}
}

// VectorEnabled 向量检索能力是否可用
func (g *Gateway) VectorEnabled() bool {
	return g != nil && g.embedder != nil && g.vector != nil
}

// GraphEnabled 图谱检索能力是否可用
func (g *Gateway) GraphEnabled() bool {
	return g != nil && g.graph != nil
}

// VectorSearch 纯向量检索，按相似度降序
func (g *Gateway) VectorSearch(ctx context.Context, in SearchInput) ([]*SearchResult, error) {
	ctx, span := tracer.Start(ctx, "Gateway.VectorSearch")
	defer span.End()

	in, err := g.normalize(in)
	if err != nil {
		return nil, err
	}
	if !g.VectorEnabled() {
		return nil, apperrors.Wrap(ErrVectorDisabled, apperrors.CodeRetrievalUnavailable, "vector retrieval unavailable")
	}

	start := time.Now()
	hits, err := g.vectorCandidates(ctx, in)
	g.observe("vector", start, err)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalUnavailable, "vector retrieval unavailable")
	}

	results := make([]*SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, &SearchResult{
			ChunkID:       h.ChunkID,
			DocumentID:    h.DocumentID,
			DocumentTitle: h.DocumentTitle,
			Source:        h.Source,
			Content:       h.Content,
			Score:         h.Score,
			VectorScore:   h.Score,
		})
	}
	return results, nil
}

// GraphSearch 图谱事实检索，严格限定在工作空间内
func (g *Gateway) GraphSearch(ctx context.Context, in SearchInput) ([]*GraphFact, error) {
	ctx, span := tracer.Start(ctx, "Gateway.GraphSearch")
	defer span.End()

	in, err := g.normalize(in)
	if err != nil {
		return nil, err
	}
	if !g.GraphEnabled() {
		return nil, apperrors.Wrap(ErrGraphDisabled, apperrors.CodeRetrievalUnavailable, "graph retrieval unavailable")
	}

	start := time.Now()
	var facts []*GraphFact
	err = g.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		facts, innerErr = g.graph.SearchFacts(ctx, in.WorkspaceID, in.Query, *in.Limit)
		return innerErr
	})
	g.observe("graph", start, err)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalUnavailable, "graph retrieval unavailable")
	}
	return facts, nil
}

// HybridSearch 向量与关键词双路召回，经加权融合排序。
// 单路故障时降级为仅存活信号；两路全部故障才返回错误。
func (g *Gateway) HybridSearch(ctx context.Context, in SearchInput) ([]*SearchResult, error) {
	ctx, span := tracer.Start(ctx, "Gateway.HybridSearch")
	defer span.End()

	in, err := g.normalize(in)
	if err != nil {
		return nil, err
	}

	textWeight := g.cfg.DefaultTextWeight
	if in.TextWeight != nil {
		textWeight = *in.TextWeight
	}
	if textWeight < 0 || textWeight > 1 {
		return nil, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("text_weight must be in [0,1], got %v", textWeight))
	}

	start := time.Now()

	var vectorSide []ranking.Candidate
	var vectorErr error
	if g.VectorEnabled() {
		hits, err := g.vectorCandidates(ctx, in)
		if err != nil {
			vectorErr = err
			logger.FromContext(ctx).Warn("hybrid search: vector signal degraded", "error", err)
		} else {
			for _, h := range hits {
				vectorSide = append(vectorSide, ranking.Candidate{
					ChunkID:       h.ChunkID,
					DocumentID:    h.DocumentID,
					DocumentTitle: h.DocumentTitle,
					Source:        h.Source,
					Content:       h.Content,
					VectorScore:   h.Score,
				})
			}
		}
	} else {
		vectorErr = ErrVectorDisabled
	}

	var textSide []ranking.Candidate
	var textErr error
	if g.keyword != nil {
		var matches []*repository.KeywordMatch
		textErr = g.withRetry(ctx, func(ctx context.Context) error {
			var innerErr error
			matches, innerErr = g.keyword.KeywordSearch(ctx, in.WorkspaceID, in.Query, *in.Limit)
			return innerErr
		})
		if textErr != nil {
			logger.FromContext(ctx).Warn("hybrid search: keyword signal degraded", "error", textErr)
		} else {
			for _, m := range matches {
				textSide = append(textSide, ranking.Candidate{
					ChunkID:       m.ChunkID,
					DocumentID:    m.DocumentID,
					DocumentTitle: m.DocumentTitle,
					Source:        m.Source,
					Content:       m.Content,
					TextScore:     m.Score,
				})
			}
		}
	} else {
		textErr = fmt.Errorf("keyword retrieval is disabled")
	}

	if vectorErr != nil && textErr != nil {
		g.observe("hybrid", start, vectorErr)
		return nil, apperrors.Wrap(vectorErr, apperrors.CodeRetrievalUnavailable, "hybrid retrieval unavailable")
	}

	ranked, err := ranking.Rank(ranking.Merge(vectorSide, textSide), textWeight, *in.Limit)
	g.observe("hybrid", start, err)
	if err != nil {
		return nil, err
	}

	results := make([]*SearchResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, &SearchResult{
			ChunkID:       r.ChunkID,
			DocumentID:    r.DocumentID,
			DocumentTitle: r.DocumentTitle,
			Source:        r.Source,
			Content:       r.Content,
			Score:         r.CombinedScore,
			VectorScore:   r.VectorScore,
			TextScore:     r.TextScore,
		})
	}
	return results, nil
}

// ListDocuments 工作空间内文档列表
func (g *Gateway) ListDocuments(ctx context.Context, workspaceID string, pagination repository.Pagination) (*repository.PagedResult[*entity.DocumentSummary], error) {
	ctx, span := tracer.Start(ctx, "Gateway.ListDocuments")
	defer span.End()

	if strings.TrimSpace(workspaceID) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "workspace_id is required")
	}

	var result *repository.PagedResult[*entity.DocumentSummary]
	err := g.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = g.docs.ListSummaries(ctx, workspaceID, pagination)
		return innerErr
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalUnavailable, "document listing unavailable")
	}
	return result, nil
}

// vectorCandidates 查询向量化后召回，整体重试一次
func (g *Gateway) vectorCandidates(ctx context.Context, in SearchInput) ([]*VectorHit, error) {
	var hits []*VectorHit
	err := g.withRetry(ctx, func(ctx context.Context) error {
		vec, innerErr := g.embedQuery(ctx, in.Query)
		if innerErr != nil {
			return innerErr
		}
		hits, innerErr = g.vector.SearchChunks(ctx, in.WorkspaceID, vec, *in.Limit)
		return innerErr
	})
	return hits, err
}

func (g *Gateway) embedQuery(ctx context.Context, query string) ([]float32, error) {
	v64, err := g.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}

// withRetry 失败后退避重试一次
func (g *Gateway) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.cfg.RetryBackoff):
	}
	return fn(ctx)
}

func (g *Gateway) normalize(in SearchInput) (SearchInput, error) {
	in.WorkspaceID = strings.TrimSpace(in.WorkspaceID)
	in.Query = strings.TrimSpace(in.Query)
	if in.WorkspaceID == "" {
		return in, apperrors.New(apperrors.CodeInvalidParam, "workspace_id is required")
	}
	if in.Query == "" {
		return in, apperrors.New(apperrors.CodeInvalidParam, "query is required")
	}
	// 显式传入的 limit 必须合法；未传时才取默认值
	if in.Limit == nil {
		v := g.cfg.DefaultLimit
		in.Limit = &v
	} else if *in.Limit < 1 {
		return in, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("limit must be at least 1, got %d", *in.Limit))
	}
	if *in.Limit > g.cfg.MaxLimit {
		v := g.cfg.MaxLimit
		in.Limit = &v
	}
	return in, nil
}

func (g *Gateway) observe(searchType string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchTotal.WithLabelValues(searchType, status).Inc()
	metrics.SearchDuration.WithLabelValues(searchType).Observe(time.Since(start).Seconds())
}
