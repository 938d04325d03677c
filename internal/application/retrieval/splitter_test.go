package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByRunes_ShortTextSinglePiece(t *testing.T) {
	pieces := splitByRunes("hello world", 100, 10)
	require.Len(t, pieces, 1)
	assert.Equal(t, "hello world", pieces[0])
}

func TestSplitByRunes_EmptyInput(t *testing.T) {
	assert.Nil(t, splitByRunes("", 100, 10))
	assert.Nil(t, splitByRunes("   \n\t  ", 100, 10))
}

func TestSplitByRunes_OverlapWindows(t *testing.T) {
	text := strings.Repeat("a", 25)
	pieces := splitByRunes(text, 10, 2)

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.LessOrEqual(t, len([]rune(p)), 10)
	}
	// step = 10-2 = 8，25 个字符应切出 4 片
	assert.Len(t, pieces, 4)
}

func TestSplitByRunes_MultibyteRunesNotBroken(t *testing.T) {
	text := strings.Repeat("汉", 30)
	pieces := splitByRunes(text, 10, 0)

	require.Len(t, pieces, 3)
	for _, p := range pieces {
		assert.Equal(t, 10, len([]rune(p)))
		// 每个片段都应是完整的汉字序列
		assert.NotContains(t, p, "�")
	}
}

func TestSplitByRunes_OverlapLargerThanSize(t *testing.T) {
	text := strings.Repeat("b", 30)
	// overlap >= maxRunes 时退化为无重叠切分，不能死循环
	pieces := splitByRunes(text, 10, 10)
	require.Len(t, pieces, 3)
}

func TestSplitByRunes_NonPositiveMax(t *testing.T) {
	pieces := splitByRunes("some text", 0, 0)
	require.Len(t, pieces, 1)
	assert.Equal(t, "some text", pieces[0])
}
