package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

func testChunks(t *testing.T, docID string, texts ...string) []domain.Chunk {
	t.Helper()
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		c, err := domain.NewChunk(text, "report.txt", "txt", i, docID)
		require.NoError(t, err)
		chunks[i] = c
	}
	return chunks
}

func TestIngestionPipeline_Ingest_Success(t *testing.T) {
	embedder := &mockEmbeddingService{}
	index := &mockVectorIndex{}
	pipeline := NewIngestionPipeline(embedder, index)

	ok := pipeline.Ingest(context.Background(), testChunks(t, "doc1", "first part", "second part"), "doc1")

	require.True(t, ok)
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Equal(t, []string{"first part", "second part"}, embedder.lastBatch)
	require.Len(t, index.upserts, 1)

	records := index.upserts[0]
	require.Len(t, records, 2)
	assert.Equal(t, "doc1_chunk_0", records[0].ID)
	assert.Equal(t, "doc1_chunk_1", records[1].ID)
	assert.Equal(t, domain.ChunkMetadata{
		Text:     "second part",
		Filename: "report.txt",
		FileType: "txt",
		ChunkID:  1,
		DocID:    "doc1",
	}, records[1].Metadata)
}

func TestIngestionPipeline_Ingest_UsesDocIDArgument(t *testing.T) {
	index := &mockVectorIndex{}
	pipeline := NewIngestionPipeline(&mockEmbeddingService{}, index)

	ok := pipeline.Ingest(context.Background(), testChunks(t, "other", "text"), "doc2")

	require.True(t, ok)
	record := index.upserts[0][0]
	assert.Equal(t, "doc2_chunk_0", record.ID)
	assert.Equal(t, "doc2", record.Metadata.DocID)
}

func TestIngestionPipeline_Ingest_EmptyChunks(t *testing.T) {
	embedder := &mockEmbeddingService{}
	index := &mockVectorIndex{}
	pipeline := NewIngestionPipeline(embedder, index)

	assert.False(t, pipeline.Ingest(context.Background(), nil, "doc1"))
	assert.Zero(t, embedder.batchCalls)
	assert.Zero(t, index.upsertCalls)

	err := pipeline.TryIngest(context.Background(), []domain.Chunk{}, "doc1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestionPipeline_TryIngest_Failures(t *testing.T) {
	tests := []struct {
		name     string
		embedder *mockEmbeddingService
		index    *mockVectorIndex
		docID    string
		wantErr  error
	}{
		{
			name:     "empty doc id",
			embedder: &mockEmbeddingService{},
			index:    &mockVectorIndex{},
			docID:    "",
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "embedding failure",
			embedder: &mockEmbeddingService{embedErr: errors.New("model offline")},
			index:    &mockVectorIndex{},
			docID:    "doc",
			wantErr:  domain.ErrIngestFailed,
		},
		{
			name:     "vector count mismatch",
			embedder: &mockEmbeddingService{short: true},
			index:    &mockVectorIndex{},
			docID:    "doc",
			wantErr:  domain.ErrIngestFailed,
		},
		{
			name:     "index failure",
			embedder: &mockEmbeddingService{},
			index:    &mockVectorIndex{upsertErr: errors.New("disk full")},
			docID:    "doc",
			wantErr:  domain.ErrIngestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := NewIngestionPipeline(tt.embedder, tt.index)
			chunks := testChunks(t, "doc", "alpha", "beta")

			err := pipeline.TryIngest(context.Background(), chunks, tt.docID)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, pipeline.Ingest(context.Background(), chunks, tt.docID))
		})
	}
}

func TestIngestionPipeline_MissingDependencies(t *testing.T) {
	chunks := testChunks(t, "doc", "alpha")

	err := NewIngestionPipeline(nil, &mockVectorIndex{}).TryIngest(context.Background(), chunks, "doc")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	err = NewIngestionPipeline(&mockEmbeddingService{}, nil).TryIngest(context.Background(), chunks, "doc")
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}
