package driving

import (
	"context"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// IngestService writes chunks of one document into the vector index.
type IngestService interface {
	// Ingest embeds all chunks in one batch and upserts them in one call.
	// It returns false on empty input or on any embedding or index failure;
	// failures are logged, never returned.
	Ingest(ctx context.Context, chunks []domain.Chunk, docID string) bool
}

// DocumentService ingests whole files: extraction, chunking and indexing.
type DocumentService interface {
	// IngestFile processes the file at path, stored under its original filename.
	IngestFile(ctx context.Context, path, filename string) (*domain.IngestReport, error)

	// IngestText chunks and indexes text that was extracted elsewhere.
	IngestText(ctx context.Context, text, filename string) (*domain.IngestReport, error)

	// RecentEvents returns up to n of the newest ingestion events.
	RecentEvents(n int) []domain.IngestEvent
}
