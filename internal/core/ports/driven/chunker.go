package driven

import "github.com/custodia-labs/jarvis/internal/core/domain"

// Chunker splits a document's extracted text into tagged chunks.
type Chunker interface {
	Chunk(text, filename, fileType, docID string) ([]domain.Chunk, error)
}
