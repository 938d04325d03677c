// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"rag-chat-api/internal/application/retrieval"
)

// SearchRequest 检索请求
type SearchRequest struct {
	Query string `json:"query" binding:"required"`

	// Limit 省略取默认值；显式传 0 或负数视为非法参数
	Limit *int `json:"limit,omitempty"`

	// TextWeight 仅混合检索生效，nil 取配置默认值
	TextWeight *float64 `json:"text_weight,omitempty"`
}

// SearchResultResponse 单条检索结果
type SearchResultResponse struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title,omitempty"`
	Source        string  `json:"source,omitempty"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	VectorScore   float64 `json:"vector_score"`
	TextScore     float64 `json:"text_score"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Results     []*SearchResultResponse `json:"results"`
	Total       int                     `json:"total"`
	SearchType  string                  `json:"search_type"`
	QueryTimeMs int64                   `json:"query_time_ms"`
}

// GraphFactResponse 图谱事实
type GraphFactResponse struct {
	UUID      string `json:"uuid,omitempty"`
	Fact      string `json:"fact"`
	ValidAt   string `json:"valid_at,omitempty"`
	InvalidAt string `json:"invalid_at,omitempty"`
}

// GraphSearchResponse 图谱检索响应
type GraphSearchResponse struct {
	Facts       []*GraphFactResponse `json:"facts"`
	Total       int                  `json:"total"`
	SearchType  string               `json:"search_type"`
	QueryTimeMs int64                `json:"query_time_ms"`
}

// ToSearchResponse 转换检索结果
func ToSearchResponse(results []*retrieval.SearchResult, searchType string, queryTime time.Duration) *SearchResponse {
	out := make([]*SearchResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, &SearchResultResponse{
			ChunkID:       r.ChunkID,
			DocumentID:    r.DocumentID,
			DocumentTitle: r.DocumentTitle,
			Source:        r.Source,
			Content:       r.Content,
			Score:         r.Score,
			VectorScore:   r.VectorScore,
			TextScore:     r.TextScore,
		})
	}
	return &SearchResponse{
		Results:     out,
		Total:       len(out),
		SearchType:  searchType,
		QueryTimeMs: queryTime.Milliseconds(),
	}
}

// ToGraphSearchResponse 转换图谱检索结果
func ToGraphSearchResponse(facts []*retrieval.GraphFact, queryTime time.Duration) *GraphSearchResponse {
	out := make([]*GraphFactResponse, 0, len(facts))
	for _, f := range facts {
		resp := &GraphFactResponse{
			UUID: f.UUID,
			Fact: f.Fact,
		}
		if f.ValidAt != nil {
			resp.ValidAt = f.ValidAt.Format(time.RFC3339)
		}
		if f.InvalidAt != nil {
			resp.InvalidAt = f.InvalidAt.Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	return &GraphSearchResponse{
		Facts:       out,
		Total:       len(out),
		SearchType:  "graph",
		QueryTimeMs: queryTime.Milliseconds(),
	}
}
