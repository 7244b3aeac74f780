package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding  []float32
	embedErr   error
	batchCalls int
	lastBatch  []string
	short      bool
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.lastBatch = texts
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	result := make([][]float32, n)
	for i := range result {
		result[i] = m.vector()
	}
	return result, nil
}

func (m *mockEmbeddingService) vector() []float32 {
	if m.embedding != nil {
		return m.embedding
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.vector()) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	matches     []domain.SearchMatch
	queryErr    error
	upsertErr   error
	upserts     [][]domain.VectorRecord
	lastTopK    int
	upsertCalls int
}

func (m *mockVectorIndex) Upsert(_ context.Context, records []domain.VectorRecord) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, records)
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, topK int) ([]domain.SearchMatch, error) {
	m.lastTopK = topK
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.matches) {
		return m.matches[:topK], nil
	}
	return m.matches, nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	n := 0
	for _, u := range m.upserts {
		n += len(u)
	}
	return n, nil
}

func (m *mockVectorIndex) Clear(_ context.Context) error {
	m.upserts = nil
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response     string
	chatErr      error
	chatCalls    int
	lastMessages []driven.ChatMessage
}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.response, m.chatErr
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockSearchService implements driving.SearchService for testing.
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

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	text string
	err  error
	exts []string
}

func (m *mockExtractor) Name() string         { return "mock" }
func (m *mockExtractor) Extensions() []string { return m.exts }
func (m *mockExtractor) Extract(_ context.Context, _, _ string) (string, error) {
	return m.text, m.err
}

// mockExtractorRegistry implements driven.ExtractorRegistry for testing.
type mockExtractorRegistry struct {
	byType map[string]driven.TextExtractor
}

func newMockRegistry(ext driven.TextExtractor, types ...string) *mockExtractorRegistry {
	r := &mockExtractorRegistry{byType: make(map[string]driven.TextExtractor)}
	for _, t := range types {
		r.byType[t] = ext
	}
	return r
}

func (r *mockExtractorRegistry) Register(e driven.TextExtractor) {
	for _, t := range e.Extensions() {
		r.byType[t] = e
	}
}

func (r *mockExtractorRegistry) Get(fileType string) driven.TextExtractor {
	return r.byType[fileType]
}

func (r *mockExtractorRegistry) FileTypes() []string {
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	return out
}

// recordingObserver implements driven.IngestLog for testing.
type recordingObserver struct {
	mu     sync.Mutex
	events []domain.IngestEvent
}

func (o *recordingObserver) Observe(e domain.IngestEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) Recent(n int) []domain.IngestEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n <= 0 || n > len(o.events) {
		n = len(o.events)
	}
	return append([]domain.IngestEvent(nil), o.events[len(o.events)-n:]...)
}

func (o *recordingObserver) steps() []domain.IngestStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.IngestStep, len(o.events))
	for i, e := range o.events {
		out[i] = e.Step
	}
	return out
}

// mockChunker implements driven.Chunker for testing.
type mockChunker struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockChunker) Chunk(text, filename, fileType, docID string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	c, err := domain.NewChunk(text, filename, fileType, 0, docID)
	if err != nil {
		return nil, err
	}
	return []domain.Chunk{c}, nil
}

// --- Test helpers ---

func match(id, text, fileType string, score float64) domain.SearchMatch {
	return domain.SearchMatch{
		ID:    id,
		Score: score,
		Metadata: domain.ChunkMetadata{
			Text:     text,
			Filename: id + "." + fileType,
			FileType: fileType,
		},
	}
}
