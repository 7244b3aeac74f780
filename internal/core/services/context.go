package services

import (
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// AssembleContext joins match texts into one generation context and
// builds one source citation per match, in match order.
// No matches yields domain.NoContextSentinel and no sources.
func AssembleContext(matches []domain.SearchMatch) domain.AssembledContext {
	if len(matches) == 0 {
		return domain.AssembledContext{
			Context: domain.NoContextSentinel,
			Sources: []string{},
		}
	}

	texts := make([]string, len(matches))
	sources := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Metadata.Text
		sources[i] = m.Source()
	}

	return domain.AssembledContext{
		Context: strings.Join(texts, domain.ContextSeparator),
		Sources: sources,
	}
}
