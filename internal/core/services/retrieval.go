package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.SearchService = (*RetrievalEngine)(nil)

// Relevance thresholds. All comparisons are exclusive.
const (
	// LenientMinScore admits any sufficiently long unseen text.
	LenientMinScore = 0.1
	// LenientMinLength is the lenient tier's minimum text length.
	LenientMinLength = 10

	// StrictMinScore is the strict tier's score floor.
	StrictMinScore = 0.3
	// StrictMinLength and StrictMaxLength bound text length in the strict tier.
	StrictMinLength = 5
	StrictMaxLength = 1000
)

// RetrievalEngine embeds queries, fetches nearest chunks and filters them
// by score, length, query intent and exact-text duplicates.
type RetrievalEngine struct {
	embedder         driven.EmbeddingService
	index            driven.VectorIndex
	defaultTopK      int
	lenientImageOnly bool
}

// RetrievalOption configures a RetrievalEngine.
type RetrievalOption func(*RetrievalEngine)

// WithDefaultTopK sets the candidate count used when a caller passes zero.
func WithDefaultTopK(k int) RetrievalOption {
	return func(e *RetrievalEngine) {
		if k > 0 {
			e.defaultTopK = k
		}
	}
}

// WithLenientImageOnly restricts the lenient tier to image-intent queries.
func WithLenientImageOnly(enabled bool) RetrievalOption {
	return func(e *RetrievalEngine) {
		e.lenientImageOnly = enabled
	}
}

// NewRetrievalEngine creates an engine over the same embedder used for ingestion.
func NewRetrievalEngine(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	opts ...RetrievalOption,
) *RetrievalEngine {
	e := &RetrievalEngine{
		embedder:    embedder,
		index:       index,
		defaultTopK: domain.DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the filtered matches for query. It never panics or
// returns an error directly: embedding or index failures are carried in
// the result's Err with no matches.
func (e *RetrievalEngine) Search(ctx context.Context, query string, topK int) domain.RetrievalResult {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	candidates, err := e.Candidates(ctx, query, topK)
	if err != nil {
		logger.Warn("retrieval failed: %v", err)
		return domain.RetrievalResult{Err: err}
	}

	matches := FilterMatches(query, candidates, e.lenientImageOnly)
	logger.Info("Retrieval: %d candidates, %d accepted", len(candidates), len(matches))

	return domain.RetrievalResult{Matches: matches}
}

// Candidates returns the raw top-k matches for query before filtering.
// A blank query returns no candidates.
func (e *RetrievalEngine) Candidates(ctx context.Context, query string, topK int) ([]domain.SearchMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if e.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if e.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if topK <= 0 {
		topK = e.defaultTopK
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}

	matches, err := e.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrVectorIndexUnavailable, err)
	}

	return matches, nil
}

// FilterMatches applies the relevance tiers in order and drops repeated texts.
//
//  1. Image-intent query and image file: accepted regardless of score or length.
//  2. Score > 0.1 and length > 10: accepted (lenient tier).
//  3. Score > 0.3 and 5 < length < 1000: accepted (strict tier).
//
// Every tier rejects a text already accepted. With lenientImageOnly the
// second tier only applies to image-intent queries. Accepted matches keep
// their candidate order and are never truncated.
func FilterMatches(query string, candidates []domain.SearchMatch, lenientImageOnly bool) []domain.SearchMatch {
	imageQuery := domain.IsImageQuery(query)
	lenient := imageQuery || !lenientImageOnly

	seen := make(map[string]struct{}, len(candidates))
	accepted := make([]domain.SearchMatch, 0, len(candidates))

	for _, c := range candidates {
		text := c.Metadata.Text
		if _, dup := seen[text]; dup {
			continue
		}

		length := utf8.RuneCountInString(text)
		var tier string
		switch {
		case imageQuery && domain.IsImageType(c.Metadata.FileType):
			tier = "image"
		case lenient && c.Score > LenientMinScore && length > LenientMinLength:
			tier = "lenient"
		case c.Score > StrictMinScore && length > StrictMinLength && length < StrictMaxLength:
			tier = "strict"
		default:
			logger.Debug("  reject %s (score %.3f, len %d)", c.ID, c.Score, length)
			continue
		}

		logger.Debug("  accept %s via %s tier (score %.3f, len %d)", c.ID, tier, c.Score, length)
		seen[text] = struct{}{}
		accepted = append(accepted, c)
	}

	return accepted
}
