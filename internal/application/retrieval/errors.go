package retrieval

import "errors"

var (
	// ErrVectorDisabled 表示向量检索能力未配置（Milvus 或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector retrieval is disabled")
	// ErrGraphDisabled 表示图谱检索能力未配置（Neo4j 不可用）。
	ErrGraphDisabled = errors.New("graph retrieval is disabled")
)
