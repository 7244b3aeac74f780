// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// AnswerReceived carries a chat answer back to the model.
type AnswerReceived struct {
	Question string
	Response *domain.ChatResponse
	Err      error
}

// SearchCompleted carries the matches of a /search command.
type SearchCompleted struct {
	Query  string
	Result domain.RetrievalResult
}

// SessionReset is sent when the user starts a new conversation.
type SessionReset struct {
	SessionID string
}
