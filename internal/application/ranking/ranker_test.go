package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rag-chat-api/pkg/errors"
)

func TestRank_WeightedCombination(t *testing.T) {
	candidates := []Candidate{
		{ChunkID: "a", VectorScore: 0.9, TextScore: 0.1},
		{ChunkID: "b", VectorScore: 0.5, TextScore: 0.8},
		{ChunkID: "c", VectorScore: 0.2, TextScore: 0.2},
	}

	ranked, err := Rank(candidates, 0.3, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "a", ranked[0].ChunkID)
	assert.InDelta(t, 0.66, ranked[0].CombinedScore, 1e-9)
	assert.Equal(t, "b", ranked[1].ChunkID)
	assert.InDelta(t, 0.59, ranked[1].CombinedScore, 1e-9)
	assert.Equal(t, "c", ranked[2].ChunkID)
	assert.InDelta(t, 0.2, ranked[2].CombinedScore, 1e-9)
}

func TestRank_WeightBoundaries(t *testing.T) {
	candidates := []Candidate{
		{ChunkID: "a", VectorScore: 0.9, TextScore: 0.1},
		{ChunkID: "b", VectorScore: 0.1, TextScore: 0.9},
	}

	// w=0 退化为纯向量排序
	ranked, err := Rank(candidates, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "a", ranked[0].ChunkID)
	assert.InDelta(t, 0.9, ranked[0].CombinedScore, 1e-9)

	// w=1 退化为纯文本排序
	ranked, err = Rank(candidates, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "b", ranked[0].ChunkID)
	assert.InDelta(t, 0.9, ranked[0].CombinedScore, 1e-9)
}

func TestRank_InvalidWeight(t *testing.T) {
	for _, w := range []float64{-0.1, 1.1} {
		_, err := Rank(nil, w, 10)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
	}
}

func TestRank_Limit(t *testing.T) {
	candidates := make([]Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		candidates = append(candidates, Candidate{
			ChunkID:     string(rune('a' + i)),
			VectorScore: float64(i) / 20,
		})
	}

	ranked, err := Rank(candidates, 0.3, 5)
	require.NoError(t, err)
	assert.Len(t, ranked, 5)

	// limit=0 不回退默认值，按非法参数拒绝
	_, err = Rank(candidates, 0.3, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	_, err = Rank(candidates, 0.3, -1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestRank_DeterministicTieBreak(t *testing.T) {
	candidates := []Candidate{
		{ChunkID: "z", VectorScore: 0.5, TextScore: 0.5},
		{ChunkID: "a", VectorScore: 0.5, TextScore: 0.5},
		{ChunkID: "m", VectorScore: 0.6, TextScore: 0.4},
	}

	// 融合分数全部相等：先比向量分，再比 ChunkID
	ranked, err := Rank(candidates, 0.5, 10)
	require.NoError(t, err)
	assert.Equal(t, "m", ranked[0].ChunkID)
	assert.Equal(t, "a", ranked[1].ChunkID)
	assert.Equal(t, "z", ranked[2].ChunkID)

	// 乱序输入结果不变
	reversed := []Candidate{candidates[2], candidates[0], candidates[1]}
	ranked2, err := Rank(reversed, 0.5, 10)
	require.NoError(t, err)
	for i := range ranked {
		assert.Equal(t, ranked[i].ChunkID, ranked2[i].ChunkID)
	}
}

func TestRank_ClampsOutOfRangeScores(t *testing.T) {
	candidates := []Candidate{
		{ChunkID: "a", VectorScore: 1.7, TextScore: -0.3},
	}
	ranked, err := Rank(candidates, 0.5, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ranked[0].CombinedScore, 1e-9)
}

func TestRank_EmptyInput(t *testing.T) {
	ranked, err := Rank(nil, 0.3, 10)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestMerge_AggregatesScoresByChunk(t *testing.T) {
	vector := []Candidate{
		{ChunkID: "a", VectorScore: 0.8, Content: "alpha"},
		{ChunkID: "b", VectorScore: 0.6, Content: "beta"},
	}
	text := []Candidate{
		{ChunkID: "b", TextScore: 0.9, Content: "beta"},
		{ChunkID: "c", TextScore: 0.4, Content: "gamma"},
	}

	merged := Merge(vector, text)
	require.Len(t, merged, 3)

	byID := map[string]Candidate{}
	for _, c := range merged {
		byID[c.ChunkID] = c
	}
	assert.InDelta(t, 0.8, byID["a"].VectorScore, 1e-9)
	assert.InDelta(t, 0.0, byID["a"].TextScore, 1e-9)
	assert.InDelta(t, 0.6, byID["b"].VectorScore, 1e-9)
	assert.InDelta(t, 0.9, byID["b"].TextScore, 1e-9)
	assert.InDelta(t, 0.4, byID["c"].TextScore, 1e-9)
	assert.Equal(t, "gamma", byID["c"].Content)
}

func TestMerge_SingleSide(t *testing.T) {
	text := []Candidate{{ChunkID: "a", TextScore: 0.7}}
	merged := Merge(nil, text)
	require.Len(t, merged, 1)
	assert.InDelta(t, 0.7, merged[0].TextScore, 1e-9)

	vector := []Candidate{{ChunkID: "b", VectorScore: 0.5}}
	merged = Merge(vector, nil)
	require.Len(t, merged, 1)
	assert.InDelta(t, 0.5, merged[0].VectorScore, 1e-9)
}
