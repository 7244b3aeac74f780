package extractors

import (
	"slices"
	"sync"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors. A later registration for
// the same extension wins.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]driven.TextExtractor)}
}

// Register adds an extractor for all of its extensions.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.Extensions() {
		r.byType[domain.NormaliseFileType(ext)] = extractor
	}
}

// Get returns the extractor for a file type, or nil.
func (r *Registry) Get(fileType string) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[domain.NormaliseFileType(fileType)]
}

// FileTypes returns every registered extension, sorted.
func (r *Registry) FileTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for ext := range r.byType {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}
