package domain

import "time"

// ChatRole identifies the author of a conversation message.
type ChatRole string

// Conversation roles.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    ChatRole  `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"timestamp"`
}

// ChatRequest is a question asked against the indexed documents.
type ChatRequest struct {
	// Message is the user's question.
	Message string `json:"message"`

	// SessionID keys the conversation history. Empty disables history.
	SessionID string `json:"session_id,omitempty"`

	// TopK overrides the number of retrieved candidates.
	TopK int `json:"top_k,omitempty"`
}

// AnswerStatus describes how an answer was produced.
type AnswerStatus string

// Answer outcomes.
const (
	// AnswerOK is a model answer grounded on retrieved context.
	AnswerOK AnswerStatus = "ok"

	// AnswerNoContext means retrieval found nothing relevant.
	AnswerNoContext AnswerStatus = "no_context"

	// AnswerFallback is an extractive answer built without the model.
	AnswerFallback AnswerStatus = "fallback"

	// AnswerRetrievalError means the retrieval backends failed.
	AnswerRetrievalError AnswerStatus = "retrieval_error"
)

// ChatResponse is the answer returned to the caller.
type ChatResponse struct {
	Response  string       `json:"response"`
	Sources   []string     `json:"sources"`
	SessionID string       `json:"session_id,omitempty"`
	Status    AnswerStatus `json:"status"`
}
