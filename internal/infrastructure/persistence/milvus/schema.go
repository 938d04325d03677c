// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionChunks 文档分片集合
	CollectionChunks = "chunks"

	// VectorDimension 向量维度
	VectorDimension = 1536
)

// ChunksSchema 文档分片 Collection Schema
func ChunksSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionChunks,
		Description:    "Document chunks for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1536",
				},
			},
			{
				Name:     "workspace_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "document_title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// Chunk 分片向量数据结构
type Chunk struct {
	ID            string    `json:"id"`
	Vector        []float32 `json:"vector"`
	WorkspaceID   string    `json:"workspace_id"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	Source        string    `json:"source"`
	ChunkIndex    int64     `json:"chunk_index"`
	Content       string    `json:"content"`
}

// PartitionName 生成分区名称，每个工作空间一个分区。
// Milvus 分区名只允许字母数字与下划线，UUID 中的连字符需要替换。
func PartitionName(workspaceID string) string {
	return "ws_" + strings.ReplaceAll(workspaceID, "-", "_")
}
