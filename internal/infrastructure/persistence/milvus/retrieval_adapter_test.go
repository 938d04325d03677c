package milvus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_PreservesCosineOrdering(t *testing.T) {
	// COSINE 得分越高越相似，换算后次序不能反转
	strong := similarity(0.95)
	weak := similarity(0.20)

	assert.Greater(t, strong, weak)
	assert.InDelta(t, 0.95, strong, 1e-9)
	assert.InDelta(t, 0.20, weak, 1e-9)
}

func TestSimilarity_ClampsToUnitRange(t *testing.T) {
	assert.Equal(t, 0.0, similarity(-0.3))
	assert.Equal(t, 1.0, similarity(1.2))
}
