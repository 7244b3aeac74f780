package domain

import "strings"

// NoContextSentinel is the context string used when retrieval found nothing.
// Generation checks for it to switch to a no-context answer.
const NoContextSentinel = "No relevant documents found."

// ContextSeparator joins chunk texts in an assembled context.
const ContextSeparator = "\n---\n"

// DefaultTopK is the number of candidates fetched per query.
const DefaultTopK = 5

// SearchMatch is a scored hit produced fresh for each query.
type SearchMatch struct {
	// ID is the vector record key.
	ID string `json:"id"`

	// Score is the cosine similarity in [-1, 1].
	Score float64 `json:"score"`

	// Metadata carries the matched chunk fields.
	Metadata ChunkMetadata `json:"metadata"`
}

// Source returns the human-readable citation for this match.
func (m SearchMatch) Source() string {
	if m.Metadata.FileType == "" {
		return m.Metadata.Filename
	}
	return m.Metadata.Filename + " (" + m.Metadata.FileType + ")"
}

// RetrievalStatus summarises the outcome of a retrieval.
type RetrievalStatus string

// Retrieval outcomes.
const (
	// RetrievalOK means at least one match survived filtering.
	RetrievalOK RetrievalStatus = "ok"

	// RetrievalEmpty means the backends answered but nothing matched.
	RetrievalEmpty RetrievalStatus = "empty"

	// RetrievalError means embedding or the index failed.
	RetrievalError RetrievalStatus = "error"
)

// RetrievalResult is the filtered, deduplicated result of one query.
// Matches is always empty when Err is set.
type RetrievalResult struct {
	Matches []SearchMatch
	Err     error
}

// Status reports whether the result holds matches, nothing, or a failure.
func (r RetrievalResult) Status() RetrievalStatus {
	switch {
	case r.Err != nil:
		return RetrievalError
	case len(r.Matches) == 0:
		return RetrievalEmpty
	default:
		return RetrievalOK
	}
}

// AssembledContext is the generation input built from a retrieval result.
type AssembledContext struct {
	// Context is the joined chunk texts or NoContextSentinel.
	Context string `json:"context"`

	// Sources holds one citation per match, in match order.
	Sources []string `json:"sources"`
}

// HasContext returns false for the sentinel context.
func (c AssembledContext) HasContext() bool {
	return c.Context != "" && c.Context != NoContextSentinel
}

// imageKeywords mark a query as asking about visual content.
var imageKeywords = []string{
	"image", "picture", "photo", "screenshot", "chart", "graph",
	"describe", "what contain", "what about",
}

// IsImageQuery reports whether the query mentions image content.
func IsImageQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range imageKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
