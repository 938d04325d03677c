package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	apperrors "rag-chat-api/pkg/errors"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeVector struct {
	hits     []*VectorHit
	err      error
	failOnce bool
	calls    int
}

func (f *fakeVector) EnsureChunksCollection(context.Context) error { return nil }

func (f *fakeVector) SearchChunks(_ context.Context, _ string, _ []float32, _ int) ([]*VectorHit, error) {
	f.calls++
	if f.failOnce && f.calls == 1 {
		return nil, errors.New("transient milvus failure")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeVector) InsertChunks(context.Context, string, []*VectorChunk) error { return nil }
func (f *fakeVector) DeleteChunksByDocument(context.Context, string, string) error {
	return nil
}

type fakeGraph struct {
	facts        []*GraphFact
	err          error
	gotWorkspace string
}

func (f *fakeGraph) SearchFacts(_ context.Context, workspaceID, _ string, _ int) ([]*GraphFact, error) {
	f.gotWorkspace = workspaceID
	if f.err != nil {
		return nil, f.err
	}
	return f.facts, nil
}

type fakeKeyword struct {
	matches []*repository.KeywordMatch
	err     error
	calls   int
}

func (f *fakeKeyword) KeywordSearch(_ context.Context, _, _ string, _ int) ([]*repository.KeywordMatch, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

type fakeDocs struct {
	result *repository.PagedResult[*entity.DocumentSummary]
	err    error
}

func (f *fakeDocs) ListSummaries(_ context.Context, _ string, _ repository.Pagination) (*repository.PagedResult[*entity.DocumentSummary], error) {
	return f.result, f.err
}

func testConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		DefaultLimit:      10,
		MaxLimit:          50,
		DefaultTextWeight: 0.3,
		RetryBackoff:      time.Millisecond,
	}
}

func newTestGateway(vec *fakeVector, graph *fakeGraph, kw *fakeKeyword, docs *fakeDocs) *Gateway {
	var v VectorRepository
	if vec != nil {
		v = vec
	}
	var g GraphRepository
	if graph != nil {
		g = graph
	}
	var k KeywordRepository
	if kw != nil {
		k = kw
	}
	var d DocumentLister
	if docs != nil {
		d = docs
	}
	return NewGateway(&fakeEmbedder{}, v, g, k, d, testConfig())
}

func TestVectorSearch_ReturnsNormalizedHits(t *testing.T) {
	vec := &fakeVector{hits: []*VectorHit{
		{ChunkID: "c1", DocumentID: "d1", Content: "alpha", Score: 0.92},
		{ChunkID: "c2", DocumentID: "d1", Content: "beta", Score: 0.41},
	}}
	gw := newTestGateway(vec, nil, nil, nil)

	results, err := gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.InDelta(t, 0.92, results[0].Score, 1e-9)
	assert.InDelta(t, 0.92, results[0].VectorScore, 1e-9)
}

func TestVectorSearch_RetriesOnceThenSucceeds(t *testing.T) {
	vec := &fakeVector{
		failOnce: true,
		hits:     []*VectorHit{{ChunkID: "c1", Content: "alpha", Score: 0.8}},
	}
	gw := newTestGateway(vec, nil, nil, nil)

	results, err := gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, vec.calls)
}

func TestVectorSearch_UnavailableAfterRetry(t *testing.T) {
	vec := &fakeVector{err: errors.New("milvus down")}
	gw := newTestGateway(vec, nil, nil, nil)

	_, err := gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRetrievalUnavailable))
	assert.Equal(t, 2, vec.calls)
}

func TestVectorSearch_InvalidInput(t *testing.T) {
	gw := newTestGateway(&fakeVector{}, nil, nil, nil)

	_, err := gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "", Query: "alpha"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	_, err = gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "  "})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	negative := -3
	_, err = gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha", Limit: &negative})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	// 显式传 0 不回退默认值，按非法参数拒绝
	zero := 0
	_, err = gw.VectorSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha", Limit: &zero})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestGraphSearch_ScopedToWorkspace(t *testing.T) {
	graph := &fakeGraph{facts: []*GraphFact{{UUID: "f1", Fact: "Alice works at Acme"}}}
	gw := newTestGateway(nil, graph, nil, nil)

	facts, err := gw.GraphSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alice"})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "ws1", graph.gotWorkspace)
}

func TestGraphSearch_DisabledWhenNotConfigured(t *testing.T) {
	gw := newTestGateway(nil, nil, nil, nil)

	_, err := gw.GraphSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alice"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRetrievalUnavailable))
}

func TestHybridSearch_MergesBothSignals(t *testing.T) {
	vec := &fakeVector{hits: []*VectorHit{
		{ChunkID: "a", Content: "alpha", Score: 0.9},
		{ChunkID: "b", Content: "beta", Score: 0.5},
	}}
	kw := &fakeKeyword{matches: []*repository.KeywordMatch{
		{ChunkID: "b", Content: "beta", Score: 0.8},
		{ChunkID: "c", Content: "gamma", Score: 0.4},
	}}
	gw := newTestGateway(vec, nil, kw, nil)

	results, err := gw.HybridSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "beta"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// w=0.3: a=0.63, b=0.59, c=0.12
	assert.Equal(t, "a", results[0].ChunkID)
	assert.InDelta(t, 0.63, results[0].Score, 1e-9)
	assert.Equal(t, "b", results[1].ChunkID)
	assert.InDelta(t, 0.59, results[1].Score, 1e-9)
	assert.InDelta(t, 0.5, results[1].VectorScore, 1e-9)
	assert.InDelta(t, 0.8, results[1].TextScore, 1e-9)
	assert.Equal(t, "c", results[2].ChunkID)
}

func TestHybridSearch_DegradesToKeywordOnVectorFailure(t *testing.T) {
	vec := &fakeVector{err: errors.New("milvus down")}
	kw := &fakeKeyword{matches: []*repository.KeywordMatch{
		{ChunkID: "c", Content: "gamma", Score: 0.7},
	}}
	gw := newTestGateway(vec, nil, kw, nil)

	results, err := gw.HybridSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "gamma"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].ChunkID)
	// 向量信号缺失，融合分数只剩文本贡献
	assert.InDelta(t, 0.3*0.7, results[0].Score, 1e-9)
}

func TestHybridSearch_DegradesToVectorOnKeywordFailure(t *testing.T) {
	vec := &fakeVector{hits: []*VectorHit{{ChunkID: "a", Content: "alpha", Score: 0.9}}}
	kw := &fakeKeyword{err: errors.New("postgres down")}
	gw := newTestGateway(vec, nil, kw, nil)

	results, err := gw.HybridSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.7*0.9, results[0].Score, 1e-9)
	// 失败信号也要走一次重试
	assert.Equal(t, 2, kw.calls)
}

func TestHybridSearch_UnavailableWhenAllSignalsFail(t *testing.T) {
	vec := &fakeVector{err: errors.New("milvus down")}
	kw := &fakeKeyword{err: errors.New("postgres down")}
	gw := newTestGateway(vec, nil, kw, nil)

	_, err := gw.HybridSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "alpha"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRetrievalUnavailable))
}

func TestHybridSearch_InvalidTextWeight(t *testing.T) {
	gw := newTestGateway(&fakeVector{}, nil, &fakeKeyword{}, nil)

	bad := 1.5
	_, err := gw.HybridSearch(context.Background(), SearchInput{WorkspaceID: "ws1", Query: "q", TextWeight: &bad})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestListDocuments(t *testing.T) {
	docs := &fakeDocs{result: repository.NewPagedResult([]*entity.DocumentSummary{
		{ID: "d1", Title: "Handbook", ChunkCount: 12},
	}, 1, repository.NewPagination(1, 20))}
	gw := newTestGateway(nil, nil, nil, docs)

	result, err := gw.ListDocuments(context.Background(), "ws1", repository.NewPagination(1, 20))
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Handbook", result.Items[0].Title)
}
