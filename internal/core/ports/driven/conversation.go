package driven

import (
	"context"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// ConversationStore keeps chat history per session.
type ConversationStore interface {
	// Append adds messages to a session, creating it if needed.
	Append(ctx context.Context, sessionID string, messages ...domain.ChatMessage) error

	// History returns up to limit of the newest messages, oldest first.
	// A limit of zero or less returns the whole session.
	History(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)

	// Clear deletes a session's history.
	Clear(ctx context.Context, sessionID string) error
}
