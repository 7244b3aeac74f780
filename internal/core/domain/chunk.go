package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Chunk is a contiguous slice of one document's extracted text.
// It is the atomic unit of embedding and retrieval.
type Chunk struct {
	// Text is the chunk content. Never empty.
	Text string `json:"text"`

	// Filename is the originating document name.
	Filename string `json:"filename"`

	// FileType is the lowercase file extension without the dot.
	FileType string `json:"file_type"`

	// Index is the zero-based position within the document.
	Index int `json:"chunk_id"`

	// DocID identifies the ingested document instance.
	DocID string `json:"doc_id"`
}

// NewChunk builds a validated Chunk.
// The file type is normalised to lowercase without a leading dot.
func NewChunk(text, filename, fileType string, index int, docID string) (Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return Chunk{}, fmt.Errorf("%w: chunk text is empty", ErrInvalidInput)
	}
	if docID == "" {
		return Chunk{}, fmt.Errorf("%w: chunk doc id is empty", ErrInvalidInput)
	}
	if index < 0 {
		return Chunk{}, fmt.Errorf("%w: chunk index %d is negative", ErrInvalidInput, index)
	}
	return Chunk{
		Text:     text,
		Filename: filename,
		FileType: NormaliseFileType(fileType),
		Index:    index,
		DocID:    docID,
	}, nil
}

// RecordID returns the vector record key for this chunk.
func (c Chunk) RecordID() string {
	return RecordID(c.DocID, c.Index)
}

// Metadata returns the metadata attached to this chunk's vector record.
func (c Chunk) Metadata() ChunkMetadata {
	return ChunkMetadata{
		Text:     c.Text,
		Filename: c.Filename,
		FileType: c.FileType,
		ChunkID:  c.Index,
		DocID:    c.DocID,
	}
}

// RecordID builds the composite vector key "{docID}_chunk_{index}".
// Keys are deterministic, so re-ingesting a doc id overwrites its records.
func RecordID(docID string, index int) string {
	return docID + "_chunk_" + strconv.Itoa(index)
}

// NormaliseFileType lowercases an extension and strips a leading dot.
func NormaliseFileType(fileType string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
}

// ChunkMetadata is the metadata persisted alongside every vector.
type ChunkMetadata struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	ChunkID  int    `json:"chunk_id"`
	DocID    string `json:"doc_id"`
}

// Map flattens the metadata into string values for backends that only
// store string maps.
func (m ChunkMetadata) Map() map[string]string {
	return map[string]string{
		"text":      m.Text,
		"filename":  m.Filename,
		"file_type": m.FileType,
		"chunk_id":  strconv.Itoa(m.ChunkID),
		"doc_id":    m.DocID,
	}
}

// ChunkMetadataFromMap is the inverse of Map. Missing keys stay zero.
func ChunkMetadataFromMap(m map[string]string) ChunkMetadata {
	id, _ := strconv.Atoi(m["chunk_id"]) //nolint:errcheck // zero on malformed ids
	return ChunkMetadata{
		Text:     m["text"],
		Filename: m["filename"],
		FileType: m["file_type"],
		ChunkID:  id,
		DocID:    m["doc_id"],
	}
}

// VectorRecord is the persisted unit in the vector index.
type VectorRecord struct {
	// ID is the composite key, see RecordID.
	ID string

	// Vector is the chunk text embedding.
	Vector []float32

	// Metadata carries the chunk fields.
	Metadata ChunkMetadata
}
