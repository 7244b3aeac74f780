package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

const revenueText = "Quarterly revenue grew 12 percent on strong subscription sales."

func revenueResult() domain.RetrievalResult {
	return domain.RetrievalResult{Matches: []domain.SearchMatch{
		{ID: "r_chunk_0", Score: 0.7, Metadata: domain.ChunkMetadata{Text: revenueText, Filename: "q3.txt", FileType: "txt"}},
	}}
}

type stubPromptStore struct {
	prompts map[string]string
}

func (s *stubPromptStore) Load(name string) (string, error) {
	p, ok := s.prompts[name]
	if !ok {
		return "", errors.New("missing")
	}
	return p, nil
}

func (s *stubPromptStore) Reload() {}

var _ driven.PromptStore = (*stubPromptStore)(nil)

func TestChatService_Ask_EmptyMessage(t *testing.T) {
	svc := NewChatService(&mockSearchService{}, nil, nil)

	_, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "  "})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_Ask_NoContext(t *testing.T) {
	llm := &mockLLMService{response: "a long invented answer"}
	svc := NewChatService(&mockSearchService{}, llm, nil)

	resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "What is the capital of Mars?"})

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNoContext, resp.Status)
	assert.Equal(t, answerNoInformation, resp.Response)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, llm.chatCalls)
}

func TestChatService_Ask_ModelAnswer(t *testing.T) {
	search := &mockSearchService{result: revenueResult()}
	llm := &mockLLMService{response: "  Revenue grew 12 percent in the quarter.  "}
	svc := NewChatService(search, llm, nil)

	resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "How much did revenue grow?", TopK: 3})

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerOK, resp.Status)
	assert.Equal(t, "Revenue grew 12 percent in the quarter.", resp.Response)
	assert.Equal(t, []string{"q3.txt (txt)"}, resp.Sources)
	assert.Equal(t, 3, search.lastTopK)

	require.Len(t, llm.lastMessages, 2)
	assert.Equal(t, "system", llm.lastMessages[0].Role)
	assert.Equal(t, "user", llm.lastMessages[1].Role)
	assert.Contains(t, llm.lastMessages[1].Content, revenueText)
	assert.Contains(t, llm.lastMessages[1].Content, "USER QUESTION: How much did revenue grow?")
	assert.True(t, strings.HasSuffix(llm.lastMessages[1].Content, "ANSWER:"))
}

func TestChatService_Ask_FallbackWithoutModel(t *testing.T) {
	svc := NewChatService(&mockSearchService{result: revenueResult()}, nil, nil)

	resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "How did revenue change?"})

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerFallback, resp.Status)
	assert.Equal(t, answerRelevantPrefix+revenueText, resp.Response)
}

func TestChatService_Ask_FallbackOnModelFailure(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLMService
	}{
		{"error", &mockLLMService{chatErr: errors.New("connection refused")}},
		{"short answer", &mockLLMService{response: "   ok   "}},
		{"ten characters", &mockLLMService{response: "0123456789"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewChatService(&mockSearchService{result: revenueResult()}, tt.llm, nil)

			resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "How did revenue change?"})

			require.NoError(t, err)
			assert.Equal(t, domain.AnswerFallback, resp.Status)
			assert.True(t, strings.HasPrefix(resp.Response, answerRelevantPrefix))
			assert.Equal(t, 1, tt.llm.chatCalls)
		})
	}
}

func TestChatService_Ask_FallbackNothingSpecific(t *testing.T) {
	svc := NewChatService(&mockSearchService{result: revenueResult()}, nil, nil)

	resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "Who won the football?"})

	require.NoError(t, err)
	assert.Equal(t, answerNothingSpecific, resp.Response)
}

func TestChatService_Ask_ImageQuestion(t *testing.T) {
	search := &mockSearchService{result: domain.RetrievalResult{Matches: []domain.SearchMatch{
		{ID: "img_chunk_0", Score: 0.05, Metadata: domain.ChunkMetadata{
			Text:     "Extracted text from image:\nFIRE EXIT\nKeep clear",
			Filename: "sign.png",
			FileType: "png",
		}},
	}}}
	llm := &mockLLMService{response: "should not be used"}
	svc := NewChatService(search, llm, nil)

	resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "What text is in the image?"})

	require.NoError(t, err)
	assert.Equal(t, "The image contains the following text:\n\nFIRE EXIT\nKeep clear", resp.Response)
	assert.Equal(t, []string{"sign.png (png)"}, resp.Sources)
	assert.Zero(t, llm.chatCalls)
}

func TestChatService_Ask_RetrievalError(t *testing.T) {
	search := &mockSearchService{result: domain.RetrievalResult{Err: domain.ErrEmbeddingUnavailable}}
	svc := NewChatService(search, &mockLLMService{}, nil)

	resp, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "anything?"})

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerRetrievalError, resp.Status)
	assert.Equal(t, answerNoInformation, resp.Response)
}

func TestChatService_History(t *testing.T) {
	store := memory.NewConversationStore()
	llm := &mockLLMService{response: "Revenue grew 12 percent in the quarter."}
	svc := NewChatService(&mockSearchService{result: revenueResult()}, llm, store)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := svc.Ask(ctx, domain.ChatRequest{Message: "How did revenue change?", SessionID: "s1"})
	require.NoError(t, err)
	_, err = svc.Ask(ctx, domain.ChatRequest{Message: "And last year?", SessionID: "s1"})
	require.NoError(t, err)

	// The second call carries the first exchange between system and user prompts.
	require.Len(t, llm.lastMessages, 4)
	assert.Equal(t, "user", llm.lastMessages[1].Role)
	assert.Equal(t, "How did revenue change?", llm.lastMessages[1].Content)
	assert.Equal(t, "assistant", llm.lastMessages[2].Role)

	history, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.RoleUser, history[2].Role)
	assert.Equal(t, "And last year?", history[2].Content)
	assert.Equal(t, fixed, history[3].Time)
}

func TestChatService_History_TurnLimit(t *testing.T) {
	store := memory.NewConversationStore()
	llm := &mockLLMService{response: "Revenue grew 12 percent in the quarter."}
	svc := NewChatService(&mockSearchService{result: revenueResult()}, llm, store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Ask(ctx, domain.ChatRequest{Message: "How did revenue change?", SessionID: "s1"})
		require.NoError(t, err)
	}

	// system + last DefaultHistoryTurns messages + question
	assert.Len(t, llm.lastMessages, DefaultHistoryTurns+2)
}

func TestChatService_History_NoSession(t *testing.T) {
	store := memory.NewConversationStore()
	svc := NewChatService(&mockSearchService{result: revenueResult()}, nil, store)

	_, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "How did revenue change?"})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatService_PromptStore(t *testing.T) {
	llm := &mockLLMService{response: "Revenue grew 12 percent in the quarter."}
	svc := NewChatService(&mockSearchService{result: revenueResult()}, llm, nil)
	svc.SetPromptStore(&stubPromptStore{prompts: map[string]string{
		driven.PromptChatSystem: "You are terse.",
		driven.PromptChatAnswer: "Q: %[2]s\nC: %[1]s",
	}})

	_, err := svc.Ask(context.Background(), domain.ChatRequest{Message: "How did revenue change?"})
	require.NoError(t, err)

	assert.Equal(t, "You are terse.", llm.lastMessages[0].Content)
	assert.Equal(t, "Q: How did revenue change?\nC: "+revenueText, llm.lastMessages[1].Content)
}

func TestExtractiveAnswer(t *testing.T) {
	ctx := strings.Join([]string{
		"short line",
		"The warranty period lasts two years from purchase.",
		"Shipping is free for orders above fifty dollars.",
		"Warranty claims need the original receipt attached.",
		"Warranty repairs take about ten working days.",
		"Warranty exclusions include water damage and drops.",
	}, "\n")

	got := extractiveAnswer("How long is the warranty period", ctx)

	assert.True(t, strings.HasPrefix(got, answerRelevantPrefix))
	assert.Contains(t, got, "two years")
	assert.NotContains(t, got, "Shipping")
	assert.NotContains(t, got, "exclusions")
	assert.Equal(t, 3, strings.Count(got, "\n"))
}

func TestExtractiveAnswer_Truncated(t *testing.T) {
	line := "warranty " + strings.Repeat("é", 900)

	got := extractiveAnswer("warranty terms", line)

	assert.Len(t, []rune(got), fallbackMaxChars)
}

func TestIsImageQuestion(t *testing.T) {
	assert.True(t, isImageQuestion("Describe the photo"))
	assert.True(t, isImageQuestion("what is this"))
	assert.True(t, isImageQuestion("What text is shown"))
	assert.False(t, isImageQuestion("How did revenue change?"))
}

func TestImageAnswer(t *testing.T) {
	got, ok := imageAnswer("intro\n---\nExtracted text from image:\nSTOP\n---\nother chunk")
	require.True(t, ok)
	assert.Equal(t, "The image contains the following text:\n\nSTOP", got)

	_, ok = imageAnswer("no marker here")
	assert.False(t, ok)

	_, ok = imageAnswer("Extracted text from image:\n   ")
	assert.False(t, ok)
}
