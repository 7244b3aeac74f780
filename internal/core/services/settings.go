package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedCacheSize    = "embedding.cache_size"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMVisionModel    = "llm.vision_model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyVectorBackend     = "vector.backend"
	keyVectorPath        = "vector.path"
	keyVectorURL         = "vector.url"
	keyVectorAPIKey      = "vector.api_key"
	keyVectorCollection  = "vector.collection"
	keyChunkSize         = "chunker.chunk_size"
	keyChunkOverlap      = "chunker.overlap"
	keyChunkMax          = "chunker.max_chunks"
	keyRetrievalTopK     = "retrieval.top_k"
	keyRetrievalLenient  = "retrieval.lenient_image_only"
	keyServerAddr        = "server.addr"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// Environment variables that fill settings left empty in the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOllamaBaseURL   = "OLLAMA_BASE_URL"
	EnvQdrantURL       = "QDRANT_URL"
	EnvQdrantAPIKey    = "QDRANT_API_KEY"
	EnvDataDir         = "JARVIS_DATA_DIR"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
// Missing keys take their defaults; empty secrets and URLs are filled
// from the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:     s.configStore.GetString(keyEmbedModel),
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL),
			APIKey:    s.configStore.GetString(keyEmbedAPIKey),
			CacheSize: s.getInt(keyEmbedCacheSize, defaults.Embedding.CacheSize),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.configStore.GetString(keyLLMModel),
			VisionModel: s.configStore.GetString(keyLLMVisionModel),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
		},
		Vector: domain.VectorSettings{
			Backend:    s.getBackend(defaults.Vector.Backend),
			Path:       s.configStore.GetString(keyVectorPath),
			URL:        s.configStore.GetString(keyVectorURL),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
			Collection: s.getString(keyVectorCollection, defaults.Vector.Collection),
		},
		Chunker: domain.ChunkerSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunker.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Chunker.Overlap),
			MaxChunks: s.getInt(keyChunkMax, defaults.Chunker.MaxChunks),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:             s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			LenientImageOnly: s.getBool(keyRetrievalLenient, defaults.Retrieval.LenientImageOnly),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	s.applyEnv(settings)
	applyModelDefaults(settings)

	return settings, nil
}

// Save persists application settings.
// Secrets are only written when set.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedCacheSize, settings.Embedding.CacheSize},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMVisionModel, settings.LLM.VisionModel},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyVectorBackend, settings.Vector.Backend.String()},
		{keyVectorPath, settings.Vector.Path},
		{keyVectorURL, settings.Vector.URL},
		{keyVectorAPIKey, settings.Vector.APIKey},
		{keyVectorCollection, settings.Vector.Collection},
		{keyChunkSize, settings.Chunker.ChunkSize},
		{keyChunkOverlap, settings.Chunker.Overlap},
		{keyChunkMax, settings.Chunker.MaxChunks},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyRetrievalLenient, settings.Retrieval.LenientImageOnly},
		{keyServerAddr, settings.Server.Addr},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %q does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURL
	if provider == domain.AIProviderOllama && baseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaBaseURL
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %q does not support text generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURL
	if provider == domain.AIProviderOllama && baseURL == "" {
		settings.LLM.BaseURL = defaultOllamaBaseURL
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend selects the vector index implementation.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend, path, url string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	if backend == domain.VectorBackendQdrant && url == "" {
		return fmt.Errorf("qdrant backend requires a URL")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Vector.Backend = backend
	settings.Vector.Path = path
	settings.Vector.URL = url

	return s.Save(settings)
}

// SetChunking updates chunk size and overlap.
func (s *SettingsService) SetChunking(chunkSize, overlap int) error {
	if overlap < 0 || chunkSize <= overlap {
		return fmt.Errorf("%w: chunk size %d, overlap %d", domain.ErrInvalidChunkConfig, chunkSize, overlap)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Chunker.ChunkSize = chunkSize
	settings.Chunker.Overlap = overlap

	return s.Save(settings)
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	fill := func(dst *string, env string) {
		if *dst != "" {
			return
		}
		if v, ok := s.lookupEnv(env); ok && v != "" {
			*dst = v
		}
	}

	switch settings.Embedding.Provider {
	case domain.AIProviderOpenAI:
		fill(&settings.Embedding.APIKey, EnvOpenAIAPIKey)
	case domain.AIProviderOllama:
		fill(&settings.Embedding.BaseURL, EnvOllamaBaseURL)
	}

	switch settings.LLM.Provider {
	case domain.AIProviderOpenAI:
		fill(&settings.LLM.APIKey, EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		fill(&settings.LLM.APIKey, EnvAnthropicAPIKey)
	case domain.AIProviderOllama:
		fill(&settings.LLM.BaseURL, EnvOllamaBaseURL)
	}

	if settings.Vector.Backend == domain.VectorBackendQdrant {
		fill(&settings.Vector.URL, EnvQdrantURL)
		fill(&settings.Vector.APIKey, EnvQdrantAPIKey)
	}
	fill(&settings.Vector.Path, EnvDataDir)
}

func applyModelDefaults(settings *domain.AppSettings) {
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.LLM.VisionModel == "" && settings.LLM.Provider == domain.AIProviderOllama {
		settings.LLM.VisionModel = domain.DefaultVisionModel
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
