package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"rag-chat-api/internal/domain/repository"
)

const (
	toolNameVectorSearch  = "vector_search"
	toolNameHybridSearch  = "hybrid_search"
	toolNameGraphSearch   = "graph_search"
	toolNameListDocuments = "list_documents"

	toolSnippetRunes = 400
)

// Tools 返回绑定到指定工作空间的全套检索工具。
// 工具按轮次构造，WorkspaceID 由服务端注入，模型无法跨空间检索。
func Tools(gateway *Gateway, workspaceID string) []tool.BaseTool {
	return []tool.BaseTool{
		&vectorSearchTool{gateway: gateway, workspaceID: workspaceID},
		&hybridSearchTool{gateway: gateway, workspaceID: workspaceID},
		&graphSearchTool{gateway: gateway, workspaceID: workspaceID},
		&listDocumentsTool{gateway: gateway, workspaceID: workspaceID},
	}
}

type vectorSearchTool struct {
	gateway     *Gateway
	workspaceID string
}

func (t *vectorSearchTool) GetType() string { return toolNameVectorSearch }

func (t *vectorSearchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: toolNameVectorSearch,
		Desc: "对知识库做语义向量检索，返回与问题语义最相近的文档片段。适合概念性、改写过的提问。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "检索语句", Required: true},
			"limit": {Type: schema.Integer, Desc: "可选：返回条数，默认 10"},
		}),
	}, nil
}

func (t *vectorSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args, errJSON := parseSearchArgs(argumentsInJSON)
	if errJSON != "" {
		return errJSON, nil
	}

	results, err := t.gateway.VectorSearch(ctx, SearchInput{
		WorkspaceID: t.workspaceID,
		Query:       args.Query,
		Limit:       args.Limit,
	})
	if err != nil {
		return toolError(err), nil
	}
	return marshalHits(args.Query, results), nil
}

type hybridSearchTool struct {
	gateway     *Gateway
	workspaceID string
}

func (t *hybridSearchTool) GetType() string { return toolNameHybridSearch }

func (t *hybridSearchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: toolNameHybridSearch,
		Desc: "向量与关键词混合检索，兼顾语义相似与字面命中。包含专有名词、代号或精确措辞的问题优先使用。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query":       {Type: schema.String, Desc: "检索语句", Required: true},
			"limit":       {Type: schema.Integer, Desc: "可选：返回条数，默认 10"},
			"text_weight": {Type: schema.Number, Desc: "可选：关键词信号权重 [0,1]，默认 0.3"},
		}),
	}, nil
}

func (t *hybridSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args, errJSON := parseSearchArgs(argumentsInJSON)
	if errJSON != "" {
		return errJSON, nil
	}

	results, err := t.gateway.HybridSearch(ctx, SearchInput{
		WorkspaceID: t.workspaceID,
		Query:       args.Query,
		Limit:       args.Limit,
		TextWeight:  args.TextWeight,
	})
	if err != nil {
		return toolError(err), nil
	}
	return marshalHits(args.Query, results), nil
}

type graphSearchTool struct {
	gateway     *Gateway
	workspaceID string
}

func (t *graphSearchTool) GetType() string { return toolNameGraphSearch }

func (t *graphSearchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: toolNameGraphSearch,
		Desc: "在知识图谱中检索与问题相关的事实（实体关系），适合人物、组织、事件之间关联的提问。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "检索语句", Required: true},
			"limit": {Type: schema.Integer, Desc: "可选：返回条数，默认 10"},
		}),
	}, nil
}

func (t *graphSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args, errJSON := parseSearchArgs(argumentsInJSON)
	if errJSON != "" {
		return errJSON, nil
	}

	facts, err := t.gateway.GraphSearch(ctx, SearchInput{
		WorkspaceID: t.workspaceID,
		Query:       args.Query,
		Limit:       args.Limit,
	})
	if err != nil {
		return toolError(err), nil
	}

	out := struct {
		Query string       `json:"query"`
		Facts []*GraphFact `json:"facts"`
	}{Query: args.Query, Facts: facts}
	b, _ := json.Marshal(out)
	return string(b), nil
}

type listDocumentsTool struct {
	gateway     *Gateway
	workspaceID string
}

func (t *listDocumentsTool) GetType() string { return toolNameListDocuments }

func (t *listDocumentsTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: toolNameListDocuments,
		Desc: "列出知识库中的文档（标题、来源、分片数），用于了解知识库里有哪些资料。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"page":      {Type: schema.Integer, Desc: "可选：页码，默认 1"},
			"page_size": {Type: schema.Integer, Desc: "可选：每页条数，默认 20"},
		}),
	}, nil
}

func (t *listDocumentsTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		Page     int `json:"page,omitempty"`
		PageSize int `json:"page_size,omitempty"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		b, _ := json.Marshal(map[string]any{"error": fmt.Sprintf("invalid arguments: %v", err)})
		return string(b), nil
	}

	result, err := t.gateway.ListDocuments(ctx, t.workspaceID, repository.NewPagination(args.Page, args.PageSize))
	if err != nil {
		return toolError(err), nil
	}

	type docBrief struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Source     string `json:"source,omitempty"`
		ChunkCount int64  `json:"chunk_count"`
	}
	briefs := make([]docBrief, 0, len(result.Items))
	for _, d := range result.Items {
		briefs = append(briefs, docBrief{ID: d.ID, Title: d.Title, Source: d.Source, ChunkCount: d.ChunkCount})
	}

	out := struct {
		Total     int64      `json:"total"`
		Page      int        `json:"page"`
		Documents []docBrief `json:"documents"`
	}{Total: result.Total, Page: result.Page, Documents: briefs}
	b, _ := json.Marshal(out)
	return string(b), nil
}

type searchArgs struct {
	Query      string   `json:"query"`
	Limit      *int     `json:"limit,omitempty"`
	TextWeight *float64 `json:"text_weight,omitempty"`
}

func parseSearchArgs(argumentsInJSON string) (searchArgs, string) {
	var args searchArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		b, _ := json.Marshal(map[string]any{"error": fmt.Sprintf("invalid arguments: %v", err)})
		return args, string(b)
	}
	args.Query = strings.TrimSpace(args.Query)
	if args.Query == "" {
		b, _ := json.Marshal(map[string]any{"error": "query is required"})
		return args, string(b)
	}
	return args, ""
}

// toolError 工具失败以 JSON 负载返回，让模型有机会改用其他工具
func toolError(err error) string {
	b, _ := json.Marshal(map[string]any{"error": err.Error()})
	return string(b)
}

func marshalHits(query string, results []*SearchResult) string {
	type hit struct {
		ChunkID       string  `json:"chunk_id"`
		DocumentTitle string  `json:"document_title,omitempty"`
		Source        string  `json:"source,omitempty"`
		Snippet       string  `json:"snippet"`
		Score         float64 `json:"score"`
	}
	hits := make([]hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hit{
			ChunkID:       r.ChunkID,
			DocumentTitle: r.DocumentTitle,
			Source:        r.Source,
			Snippet:       truncateRunes(compactOneLine(r.Content), toolSnippetRunes),
			Score:         r.Score,
		})
	}
	out := struct {
		Query string `json:"query"`
		Hits  []hit  `json:"hits"`
	}{Query: query, Hits: hits}
	b, _ := json.Marshal(out)
	return string(b)
}

func compactOneLine(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
