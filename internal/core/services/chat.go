package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultHistoryTurns is the number of past messages sent to the model.
const DefaultHistoryTurns = 6

// minModelAnswerChars rejects empty or truncated model output.
const minModelAnswerChars = 10

const defaultChatSystemPrompt = `You are Jarvis, an assistant that answers questions about the user's uploaded documents.
Answer directly and factually, using only the document context you are given.`

const defaultChatAnswerPrompt = `CONTEXT INFORMATION:
%s

USER QUESTION: %s

INSTRUCTIONS:
- Provide a direct, concise answer to the question
- Use ONLY information from the context provided
- If the answer requires specific numbers or facts, include them precisely
- Maximum 2-3 sentences
- Do not say "based on the context" or similar phrases

If the context doesn't contain the answer, respond with: "The available documents don't contain information about this specific question."

ANSWER:`

// ChatService answers questions by retrieving chunks, assembling context
// and asking the language model, degrading to extractive answers when the
// model is missing or failing.
type ChatService struct {
	search       driving.SearchService
	llm          driven.LLMService
	history      driven.ConversationStore
	prompts      driven.PromptStore
	historyTurns int
	now          func() time.Time
}

// NewChatService creates a chat service.
// llm and history are optional (can be nil).
func NewChatService(
	search driving.SearchService,
	llm driven.LLMService,
	history driven.ConversationStore,
) *ChatService {
	return &ChatService{
		search:       search,
		llm:          llm,
		history:      history,
		historyTurns: DefaultHistoryTurns,
		now:          time.Now,
	}
}

// SetPromptStore sets the store for user-editable prompt templates.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ask answers one question.
func (s *ChatService) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}
	if s.search == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	logger.Section("Chat")
	logger.Debug("Session: %q, question: %q", req.SessionID, question)

	result := s.search.Search(ctx, question, req.TopK)
	assembled := AssembleContext(result.Matches)
	logger.Debug("Context: %d chars from %d sources", len(assembled.Context), len(assembled.Sources))

	past := s.recentHistory(ctx, req.SessionID)
	answer, status := s.answer(ctx, question, assembled, past)
	if result.Err != nil {
		status = domain.AnswerRetrievalError
	}

	s.record(ctx, req.SessionID, question, answer)

	return &domain.ChatResponse{
		Response:  answer,
		Sources:   assembled.Sources,
		SessionID: req.SessionID,
		Status:    status,
	}, nil
}

// History returns a session's conversation, oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if s.history == nil || sessionID == "" {
		return []domain.ChatMessage{}, nil
	}
	return s.history.History(ctx, sessionID, 0)
}

func (s *ChatService) answer(
	ctx context.Context,
	question string,
	assembled domain.AssembledContext,
	past []domain.ChatMessage,
) (string, domain.AnswerStatus) {
	if !assembled.HasContext() {
		return extractiveAnswer(question, assembled.Context), domain.AnswerNoContext
	}

	if isImageQuestion(question) {
		if answer, ok := imageAnswer(assembled.Context); ok {
			logger.Debug("Answering image question from transcribed text")
			return answer, domain.AnswerFallback
		}
	}

	if s.llm == nil {
		logger.Debug("No LLM configured, using extractive answer")
		return extractiveAnswer(question, assembled.Context), domain.AnswerFallback
	}

	messages := make([]driven.ChatMessage, 0, len(past)+2)
	messages = append(messages, driven.ChatMessage{
		Role:    "system",
		Content: s.loadPrompt(driven.PromptChatSystem, defaultChatSystemPrompt),
	})
	for _, m := range past {
		messages = append(messages, driven.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf(s.loadPrompt(driven.PromptChatAnswer, defaultChatAnswerPrompt), assembled.Context, question),
	})

	response, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0.1})
	response = strings.TrimSpace(response)
	if err != nil || len(response) <= minModelAnswerChars {
		logger.Warn("LLM %s answer unusable (err: %v), using extractive answer", s.llm.ModelName(), err)
		return extractiveAnswer(question, assembled.Context), domain.AnswerFallback
	}

	return response, domain.AnswerOK
}

func (s *ChatService) recentHistory(ctx context.Context, sessionID string) []domain.ChatMessage {
	if s.history == nil || sessionID == "" {
		return nil
	}
	past, err := s.history.History(ctx, sessionID, s.historyTurns)
	if err != nil {
		logger.Warn("load history for %s: %v", sessionID, err)
		return nil
	}
	return past
}

func (s *ChatService) record(ctx context.Context, sessionID, question, answer string) {
	if s.history == nil || sessionID == "" {
		return
	}
	now := s.now()
	err := s.history.Append(ctx, sessionID,
		domain.ChatMessage{Role: domain.RoleUser, Content: question, Time: now},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: answer, Time: now},
	)
	if err != nil {
		logger.Warn("save history for %s: %v", sessionID, err)
	}
}

// loadPrompt loads a prompt from the store, falling back to the built-in default.
func (s *ChatService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
