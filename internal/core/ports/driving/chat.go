package driving

import (
	"context"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// ChatService answers questions from the indexed documents.
type ChatService interface {
	// Ask retrieves context and generates an answer.
	Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)

	// History returns a session's conversation.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
