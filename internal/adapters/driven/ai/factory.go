// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/jarvis/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/jarvis/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/jarvis/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/jarvis/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/jarvis/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Nil when no LLM is configured or reachable.
	Warnings         []string          // Non-fatal issues found while connecting.

	// EmbeddingUnavailable is set when the configured embedder could not be
	// reached. EmbeddingService then fails every call with
	// domain.ErrEmbeddingUnavailable.
	EmbeddingUnavailable bool
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates and pings the configured services. The built-in hashing
// embedder is used only when no provider or the local provider is set. A
// configured embedder that cannot be reached is replaced by one that fails
// every call, so ingestion reports false and search returns no results
// instead of mixing vectors from another model into the index. An
// unreachable LLM is left nil so chat answers come from the extractive
// fallback. Neither is fatal.
func Init(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	cfg := &settings.Embedding
	emb, err := CreateAndValidateEmbeddingService(cfg)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
		result.EmbeddingUnavailable = true
		emb = newUnavailableEmbedding(cfg.Model, err)
	case emb == nil && usesBuiltinEmbedder(cfg.Provider):
		emb = cache.Wrap(hashing.NewEmbeddingService(0), cfg.CacheSize, cache.DefaultTTL)
	case emb == nil:
		err = fmt.Errorf("%w: %s embedding provider is not fully configured. Run 'jarvis settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, cfg.Provider)
		result.Warnings = append(result.Warnings, err.Error())
		result.EmbeddingUnavailable = true
		emb = newUnavailableEmbedding(cfg.Model, err)
	}
	result.EmbeddingService = emb

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	logger.Debug("Embedding model: %s (%d dims)", emb.ModelName(), emb.Dimensions())
	return result
}

func usesBuiltinEmbedder(provider domain.AIProvider) bool {
	return provider == "" || provider == domain.AIProviderLocal
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'jarvis settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'jarvis settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'jarvis settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'jarvis settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service and pings it without keeping it.
// The settings commands use it to check credentials before saving.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig creates a service and pings it without keeping it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// Validator exposes the config checks as methods for callers that take
// them as an interface.
type Validator struct{}

// ValidateEmbedding calls ValidateEmbeddingConfig.
func (Validator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(settings)
}

// ValidateLLM calls ValidateLLMConfig.
func (Validator) ValidateLLM(settings *domain.LLMSettings) error {
	return ValidateLLMConfig(settings)
}

// CreateEmbeddingService creates the embedding service for the settings,
// behind a query cache when CacheSize is positive.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use local, ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderLocal:
		svc = hashing.NewEmbeddingService(domain.EmbeddingDimensions()[settings.Model])
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return cache.Wrap(svc, settings.CacheSize, cache.DefaultTTL), nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			VisionModel: settings.VisionModel,
		}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
