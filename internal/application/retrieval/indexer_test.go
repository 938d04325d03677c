package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-api/internal/domain/entity"
)

type recordingVector struct {
	fakeVector

	inserted     []*VectorChunk
	insertedWS   string
	deletedDocID string
}

func (r *recordingVector) InsertChunks(_ context.Context, workspaceID string, chunks []*VectorChunk) error {
	r.insertedWS = workspaceID
	r.inserted = chunks
	return nil
}

func (r *recordingVector) DeleteChunksByDocument(_ context.Context, _ string, documentID string) error {
	r.deletedDocID = documentID
	return nil
}

func TestIndexDocument_SplitsEmbedsAndInserts(t *testing.T) {
	embedder := &fakeEmbedder{}
	vector := &recordingVector{}
	indexer := NewIndexer(embedder, vector, 8)

	doc := &entity.Document{
		ID:      "doc-1",
		Title:   "入门指南",
		Content: strings.Repeat("正文内容。", 400),
	}

	chunks, err := indexer.IndexDocument(context.Background(), "ws-1", doc)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// 重复摄取前会先清理旧分片
	assert.Equal(t, "doc-1", vector.deletedDocID)
	assert.Equal(t, "ws-1", vector.insertedWS)
	require.Len(t, vector.inserted, len(chunks))

	for i, c := range chunks {
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, "ws-1", c.WorkspaceID)
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, vector.inserted[i].Vector)
		assert.Equal(t, c.ID, vector.inserted[i].ChunkID)
	}
}

func TestIndexDocument_EmptyContentClearsOldChunks(t *testing.T) {
	vector := &recordingVector{}
	indexer := NewIndexer(&fakeEmbedder{}, vector, 8)

	doc := &entity.Document{ID: "doc-2", Content: "   "}
	chunks, err := indexer.IndexDocument(context.Background(), "ws-1", doc)

	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, "doc-2", vector.deletedDocID)
}

func TestIndexDocument_DisabledWithoutEmbedder(t *testing.T) {
	indexer := NewIndexer(nil, &recordingVector{}, 8)

	_, err := indexer.IndexDocument(context.Background(), "ws-1", &entity.Document{ID: "doc-3", Content: "text"})
	assert.ErrorIs(t, err, ErrVectorDisabled)
}

func TestIndexDocument_RequiresWorkspaceAndID(t *testing.T) {
	indexer := NewIndexer(&fakeEmbedder{}, &recordingVector{}, 8)

	_, err := indexer.IndexDocument(context.Background(), "", &entity.Document{ID: "x", Content: "text"})
	assert.Error(t, err)

	_, err = indexer.IndexDocument(context.Background(), "ws-1", &entity.Document{Content: "text"})
	assert.Error(t, err)
}

func TestRemoveDocument_NoopWhenVectorDisabled(t *testing.T) {
	indexer := NewIndexer(nil, nil, 0)
	assert.NoError(t, indexer.RemoveDocument(context.Background(), "ws-1", "doc-1"))
}

func TestRemoveDocument_DelegatesToVector(t *testing.T) {
	vector := &recordingVector{}
	indexer := NewIndexer(&fakeEmbedder{}, vector, 0)

	require.NoError(t, indexer.RemoveDocument(context.Background(), "ws-1", "doc-9"))
	assert.Equal(t, "doc-9", vector.deletedDocID)
}
