package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

type mockChatService struct {
	lastReq domain.ChatRequest
	resp    *domain.ChatResponse
	err     error
}

func (m *mockChatService) Ask(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	resp := *m.resp
	resp.SessionID = req.SessionID
	return &resp, nil
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, nil
}

type mockSearchService struct {
	lastQuery  string
	lastTopK   int
	result     domain.RetrievalResult
	candidates []domain.SearchMatch
	err        error
}

func (m *mockSearchService) Search(_ context.Context, query string, topK int) domain.RetrievalResult {
	m.lastQuery, m.lastTopK = query, topK
	return m.result
}

func (m *mockSearchService) Candidates(_ context.Context, query string, topK int) ([]domain.SearchMatch, error) {
	m.lastQuery, m.lastTopK = query, topK
	return m.candidates, m.err
}

// mockDocumentService fails any file whose name contains "bad".
type mockDocumentService struct {
	mu       sync.Mutex
	ingested []string
	events   []domain.IngestEvent
}

func (m *mockDocumentService) IngestFile(_ context.Context, path, filename string) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.Contains(filename, "bad") {
		return nil, errors.New("extraction failed")
	}
	m.ingested = append(m.ingested, path)
	return &domain.IngestReport{
		DocID:    "doc_" + filename,
		Filename: filename,
		FileType: domain.FileTypeOf(filename),
		Chunks:   2,
	}, nil
}

func (m *mockDocumentService) IngestText(_ context.Context, text, filename string) (*domain.IngestReport, error) {
	return &domain.IngestReport{DocID: "doc_" + filename, Filename: filename, TextLength: len(text), Chunks: 1}, nil
}

func (m *mockDocumentService) RecentEvents(n int) []domain.IngestEvent {
	if n <= 0 || n > len(m.events) {
		return m.events
	}
	return m.events[len(m.events)-n:]
}

func (m *mockDocumentService) Ingested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ingested...)
}

type mockSettingsService struct {
	settings domain.AppSettings
	saves    int
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	m.saves++
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.BaseURL = baseURL
	m.settings.Embedding.APIKey = apiKey
	m.saves++
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.BaseURL = baseURL
	m.settings.LLM.APIKey = apiKey
	m.saves++
	return nil
}

func (m *mockSettingsService) SetVectorBackend(backend domain.VectorBackend, path, url string) error {
	m.settings.Vector.Backend = backend
	m.settings.Vector.Path = path
	m.settings.Vector.URL = url
	m.saves++
	return nil
}

func (m *mockSettingsService) SetChunking(chunkSize, overlap int) error {
	if overlap < 0 || chunkSize <= overlap {
		return domain.ErrInvalidChunkConfig
	}
	m.settings.Chunker.ChunkSize = chunkSize
	m.settings.Chunker.Overlap = overlap
	m.saves++
	return nil
}

type mockValidator struct {
	err         error
	embeddingOK int
	llmOK       int
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	if m.err == nil {
		m.embeddingOK++
	}
	return m.err
}

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	if m.err == nil {
		m.llmOK++
	}
	return m.err
}

type testServices struct {
	chat     *mockChatService
	search   *mockSearchService
	docs     *mockDocumentService
	settings *mockSettingsService
}

// setupTestServices installs mocks in place of the bootstrapped services
// and returns a function restoring the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		chat: &mockChatService{resp: &domain.ChatResponse{
			Response: "The budget is 5000.",
			Sources:  []string{"budget.xlsx (xlsx)"},
			Status:   domain.AnswerOK,
		}},
		search:   &mockSearchService{},
		docs:     &mockDocumentService{},
		settings: newMockSettingsService(),
	}

	prevServices, prevSettings, prevValidator := services, settingsService, validator
	services = &Services{
		Chat:        ts.chat,
		Search:      ts.search,
		Documents:   ts.docs,
		Uploads:     ts.docs,
		Extractable: []string{"txt", "csv", "docx"},
	}
	settingsService = ts.settings
	validator = nil

	return ts, func() {
		services, settingsService, validator = prevServices, prevSettings, prevValidator
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput is execute with stdin content for the prompts.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default, since the commands are
// package globals shared by all tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
