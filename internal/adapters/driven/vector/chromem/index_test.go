package chromem

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

func record(id, text string, vec ...float32) domain.VectorRecord {
	return domain.VectorRecord{
		ID:     id,
		Vector: vec,
		Metadata: domain.ChunkMetadata{
			Text:     text,
			Filename: "slides.pptx",
			FileType: "pptx",
			ChunkID:  3,
			DocID:    "slides.pptx_1",
		},
	}
}

func TestVectorIndex_InMemory(t *testing.T) {
	idx, err := New("", "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{
		record("a", "alpha slide", 1, 0),
		record("b", "beta slide", 0, 1),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Equal(t, "alpha slide", matches[0].Metadata.Text)
	assert.Equal(t, 3, matches[0].Metadata.ChunkID)
	assert.Equal(t, "pptx", matches[0].Metadata.FileType)
}

func TestVectorIndex_Overwrite(t *testing.T) {
	idx, err := New("", "docs")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{record("a", "old", 1, 0)}))
	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{record("a", "new", 1, 0)}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVectorIndex_EmptyAndClear(t *testing.T) {
	idx, err := New("", "docs")
	require.NoError(t, err)
	ctx := context.Background()

	matches, err := idx.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{record("a", "x", 1, 0)}))
	require.NoError(t, idx.Clear(ctx))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVectorIndex_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := New(dir, "docs")
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{record("a", "kept", 1, 0)}))
	require.NoError(t, idx.Close())

	reopened, err := New(dir, "docs")
	require.NoError(t, err)
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVectorIndex_BatchValidation(t *testing.T) {
	idx, err := New("", "docs")
	require.NoError(t, err)
	ctx := context.Background()

	err = idx.Upsert(ctx, []domain.VectorRecord{record("a", "x", 1, 0), record("b", "y", 1)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	err = idx.Upsert(ctx, []domain.VectorRecord{record("", "x", 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_ZeroVectors(t *testing.T) {
	idx, err := New("", "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{
		record("stopwords", "the and of", 0, 0),
		record("a", "alpha slide", 1, 0),
	}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
	assert.False(t, math.IsNaN(matches[0].Score))

	matches, err = idx.Query(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, idx.Upsert(ctx, []domain.VectorRecord{record("z", "of the", 0, 0)}))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
