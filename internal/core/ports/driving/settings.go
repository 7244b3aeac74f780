package driving

import "github.com/custodia-labs/jarvis/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, filled with defaults.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetVectorBackend selects the vector index implementation.
	SetVectorBackend(backend domain.VectorBackend, path, url string) error

	// SetChunking updates chunk size and overlap.
	SetChunking(chunkSize, overlap int) error
}
