package mcp

import (
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Search retrieves matching chunks.
	Search driving.SearchService

	// Chat answers questions from retrieved context.
	Chat driving.ChatService

	// Documents ingests files. Optional: without it the ingest tool refuses.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
