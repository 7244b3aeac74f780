package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunkConfig indicates a chunk size that does not exceed the overlap.
	// Such a window would never advance through the text.
	ErrInvalidChunkConfig = errors.New("chunk size must be greater than overlap")

	// ErrEmptyText indicates extraction produced no text at all.
	ErrEmptyText = errors.New("no text extracted")

	// ErrTextTooShort indicates extracted text is below the ingestion minimum.
	ErrTextTooShort = errors.New("extracted text too short")

	// ErrUnsupportedFormat indicates a file extension with no upload or extraction support.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrIngestFailed indicates the embedding or upsert step of ingestion failed.
	ErrIngestFailed = errors.New("ingestion failed")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	// Chat falls back to extractive answers without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured or unreachable.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates a vector whose size differs from the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
