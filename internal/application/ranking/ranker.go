// Package ranking 实现向量与关键词信号的混合打分排序
package ranking

import (
	"fmt"
	"sort"

	apperrors "rag-chat-api/pkg/errors"
)

// DefaultLimit 默认返回条数
const DefaultLimit = 10

// Candidate 参与混合排序的候选分片
// 单一信号来源的候选，另一侧分数为 0。
type Candidate struct {
	ChunkID       string
	DocumentID    string
	DocumentTitle string
	Source        string
	Content       string
	VectorScore   float64
	TextScore     float64
}

// Ranked 排序后的候选，附带融合分数
type Ranked struct {
	Candidate
	CombinedScore float64
}

// Rank 按 combined = (1-w)*vector + w*text 融合打分并降序排序
// 分数相同按向量分降序，再按 ChunkID 升序，保证结果确定。
// limit 必须 >= 1，textWeight 必须在 [0,1] 内。
func Rank(candidates []Candidate, textWeight float64, limit int) ([]Ranked, error) {
	if textWeight < 0 || textWeight > 1 {
		return nil, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("text_weight must be in [0,1], got %v", textWeight))
	}
	if limit < 1 {
		return nil, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("limit must be at least 1, got %d", limit))
	}

	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		score := (1-textWeight)*clamp01(c.VectorScore) + textWeight*clamp01(c.TextScore)
		ranked = append(ranked, Ranked{Candidate: c, CombinedScore: clamp01(score)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CombinedScore != ranked[j].CombinedScore {
			return ranked[i].CombinedScore > ranked[j].CombinedScore
		}
		if ranked[i].VectorScore != ranked[j].VectorScore {
			return ranked[i].VectorScore > ranked[j].VectorScore
		}
		return ranked[i].ChunkID < ranked[j].ChunkID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Merge 合并向量侧与文本侧候选，按 ChunkID 去重并聚合两侧分数
func Merge(vector, text []Candidate) []Candidate {
	merged := make(map[string]Candidate, len(vector)+len(text))
	order := make([]string, 0, len(vector)+len(text))

	for _, c := range vector {
		if _, ok := merged[c.ChunkID]; !ok {
			order = append(order, c.ChunkID)
		}
		merged[c.ChunkID] = c
	}
	for _, c := range text {
		if existing, ok := merged[c.ChunkID]; ok {
			existing.TextScore = c.TextScore
			if existing.Content == "" {
				existing.Content = c.Content
			}
			merged[c.ChunkID] = existing
			continue
		}
		order = append(order, c.ChunkID)
		merged[c.ChunkID] = c
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
