// Package tui provides an interactive terminal chat for jarvis.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Search backs the /search command.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
