package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunk(t *testing.T) {
	t.Run("normalises file type", func(t *testing.T) {
		c, err := NewChunk("hello world", "notes.TXT", ".TXT", 2, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "txt", c.FileType)
		assert.Equal(t, 2, c.Index)
		assert.Equal(t, "doc-1_chunk_2", c.RecordID())
	})

	tests := []struct {
		name  string
		text  string
		index int
		docID string
	}{
		{name: "empty text", text: "", index: 0, docID: "d"},
		{name: "whitespace text", text: "  \n\t", index: 0, docID: "d"},
		{name: "empty doc id", text: "x", index: 0, docID: ""},
		{name: "negative index", text: "x", index: -1, docID: "d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunk(tt.text, "f.txt", "txt", tt.index, tt.docID)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "report.pdf_abc_chunk_0", RecordID("report.pdf_abc", 0))
	assert.Equal(t, "x_chunk_14", RecordID("x", 14))
}

func TestChunkMetadata_MapRoundTrip(t *testing.T) {
	c, err := NewChunk("body", "a.png", "png", 3, "a.png_1")
	require.NoError(t, err)

	m := c.Metadata().Map()
	assert.Equal(t, "3", m["chunk_id"])
	assert.Equal(t, c.Metadata(), ChunkMetadataFromMap(m))
}
