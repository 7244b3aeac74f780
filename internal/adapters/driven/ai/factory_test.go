package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/services"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	result.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantNil   bool
		wantErr   bool
		wantModel string
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "unconfigured", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name:      "local",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Model: "hashing-384"},
			wantModel: hashing.DefaultModel,
		},
		{
			name: "ollama",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama, BaseURL: "http://localhost:11434", Model: "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
		},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, wantNil: true},
		{name: "anthropic", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic}, wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService_Cache(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal, CacheSize: 10})
	require.NoError(t, err)
	_, ok := svc.(*cache.EmbeddingService)
	assert.True(t, ok)

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal})
	require.NoError(t, err)
	_, ok = svc.(*hashing.EmbeddingService)
	assert.True(t, ok)
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantModel string
	}{
		{name: "nil", settings: nil, wantNil: true},
		{name: "local has no llm", settings: &domain.LLMSettings{Provider: domain.AIProviderLocal}, wantNil: true},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantNil: true},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "gemma2:2b"}, wantModel: "gemma2:2b"},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"}, wantModel: "gpt-4o-mini"},
		{
			name:      "anthropic",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-3-5-haiku-latest"},
			wantModel: "claude-3-5-haiku-latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc, err := CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	assert.Nil(t, svc)
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "jarvis settings llm")
}

func TestValidateEmbeddingConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: srv.URL,
	}))
	require.NoError(t, ValidateEmbeddingConfig(nil))
	require.NoError(t, ValidateLLMConfig(&domain.LLMSettings{}))
}

func TestValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var v Validator
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal}))
	assert.Error(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
	assert.Error(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
}

func TestInit_Defaults(t *testing.T) {
	settings := domain.DefaultAppSettings()
	result := Init(&settings)
	defer result.Close()

	require.NotNil(t, result.EmbeddingService)
	assert.Equal(t, hashing.DefaultModel, result.EmbeddingService.ModelName())
	assert.Nil(t, result.LLMService)
	assert.False(t, result.EmbeddingUnavailable)
	assert.Empty(t, result.Warnings)
}

func TestInit_UnreachableEmbedderIsNotReplaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "all-minilm",
		BaseURL:  srv.URL,
	}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}

	result := Init(&settings)
	defer result.Close()

	assert.True(t, result.EmbeddingUnavailable)
	assert.Len(t, result.Warnings, 2)
	assert.Nil(t, result.LLMService)

	emb := result.EmbeddingService
	require.NotNil(t, emb)
	assert.Equal(t, "all-minilm", emb.ModelName())
	assert.Equal(t, 384, emb.Dimensions())

	_, err := emb.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	_, err = emb.EmbedBatch(context.Background(), []string{"hello"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	// An index already holding all-minilm vectors must not receive vectors
	// from another model.
	index := memory.NewVectorIndex()
	require.NoError(t, index.Upsert(context.Background(), []domain.VectorRecord{{
		ID:     "existing_chunk_0",
		Vector: make([]float32, 384),
	}}))

	pipeline := services.NewIngestionPipeline(emb, index)
	ok := pipeline.Ingest(context.Background(), []domain.Chunk{
		{Text: "fresh text", Filename: "new.txt", FileType: "txt", Index: 0, DocID: "new"},
	}, "new")
	assert.False(t, ok)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInit_MissingAPIKeyIsNotReplaced(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small"}

	result := Init(&settings)
	defer result.Close()

	assert.True(t, result.EmbeddingUnavailable)
	assert.Equal(t, "text-embedding-3-small", result.EmbeddingService.ModelName())
	assert.ErrorIs(t, result.EmbeddingService.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}

func TestInit_LocalProviderUsesHashing(t *testing.T) {
	for _, provider := range []domain.AIProvider{"", domain.AIProviderLocal} {
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{Provider: provider}

		result := Init(&settings)
		assert.False(t, result.EmbeddingUnavailable, "provider %q", provider)
		assert.Equal(t, hashing.DefaultModel, result.EmbeddingService.ModelName(), "provider %q", provider)
		result.Close()
	}
}
