package driven

import (
	"context"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// VectorIndex stores chunk vectors with their metadata and answers
// nearest-neighbour queries by cosine similarity.
//
// A single Upsert or Query call is atomic. There is no cross-call
// transaction; concurrent writers of the same record id race and the
// last write wins.
type VectorIndex interface {
	// Upsert writes all records in one batch. A record whose ID already
	// exists is replaced.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// Query returns up to topK records ordered by descending similarity,
	// with metadata attached.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchMatch, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
