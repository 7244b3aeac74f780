package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

type mockSearchService struct {
	result    domain.RetrievalResult
	lastQuery string
	lastTopK  int
}

func (m *mockSearchService) Search(_ context.Context, query string, topK int) domain.RetrievalResult {
	m.lastQuery = query
	m.lastTopK = topK
	return m.result
}

func (m *mockSearchService) Candidates(_ context.Context, _ string, _ int) ([]domain.SearchMatch, error) {
	return m.result.Matches, m.result.Err
}

type mockChatService struct {
	resp    *domain.ChatResponse
	err     error
	lastReq domain.ChatRequest
}

func (m *mockChatService) Ask(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, nil
}

type mockDocumentService struct {
	report   *domain.IngestReport
	err      error
	events   []domain.IngestEvent
	lastPath string
}

func (m *mockDocumentService) IngestFile(_ context.Context, path, _ string) (*domain.IngestReport, error) {
	m.lastPath = path
	return m.report, m.err
}

func (m *mockDocumentService) IngestText(_ context.Context, _, _ string) (*domain.IngestReport, error) {
	return m.report, m.err
}

func (m *mockDocumentService) RecentEvents(_ int) []domain.IngestEvent {
	return m.events
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	s, err := NewServer(ports, "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}
