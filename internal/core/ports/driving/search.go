package driving

import (
	"context"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// SearchService retrieves relevant chunks for a query.
type SearchService interface {
	// Search never fails outright: backend errors are carried in the result.
	Search(ctx context.Context, query string, topK int) domain.RetrievalResult

	// Candidates returns the unfiltered top-k matches for diagnostics.
	Candidates(ctx context.Context, query string, topK int) ([]domain.SearchMatch, error)
}
