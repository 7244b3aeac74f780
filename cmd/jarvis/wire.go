package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/ai"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/observability"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/vector"
	"github.com/custodia-labs/jarvis/internal/adapters/driving/cli"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/services"
	"github.com/custodia-labs/jarvis/internal/extractors"
	"github.com/custodia-labs/jarvis/internal/logger"
	"github.com/custodia-labs/jarvis/internal/postprocessors/chunker"
)

// bootstrap builds the services from the saved settings. An unreachable
// embedder makes ingestion and search fail, and an unreachable LLM degrades to
// extractive answers; only a vector index that cannot be opened or an invalid
// chunker config is fatal.
func bootstrap(
	_ context.Context,
	settingsService *services.SettingsService,
	prompts driven.PromptStore,
) (*cli.Services, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	proc, err := chunker.New(
		chunker.WithChunkSize(settings.Chunker.ChunkSize),
		chunker.WithOverlap(settings.Chunker.Overlap),
		chunker.WithMaxChunks(settings.Chunker.MaxChunks),
	)
	if err != nil {
		return nil, err
	}

	aiResult := ai.Init(settings)

	stores, err := vector.Open(settings.Vector)
	if err != nil {
		aiResult.Close()
		return nil, err
	}
	logger.Debug("Vector index: %s (%s)", settings.Vector.Backend, stores.Location)

	registry := extractors.NewDefaultRegistry(aiResult.LLMService, prompts)
	pipeline := services.NewIngestionPipeline(aiResult.EmbeddingService, stores.Index)

	retrieval := services.NewRetrievalEngine(
		aiResult.EmbeddingService,
		stores.Index,
		services.WithDefaultTopK(settings.Retrieval.TopK),
		services.WithLenientImageOnly(settings.Retrieval.LenientImageOnly),
	)

	chat := services.NewChatService(retrieval, aiResult.LLMService, stores.Conversations)
	if prompts != nil {
		chat.SetPromptStore(prompts)
	}

	ingestLog := observability.NewIngestLog(observability.DefaultLogCapacity)
	metrics := observability.NewMetrics()

	documents := services.NewDocumentService(registry, proc, pipeline, uuid.NewString)
	documents.SetIngestLog(ingestLog)
	documents.SetObserver(metrics)

	uploads := services.NewDocumentService(registry, proc, pipeline, uuid.NewString)
	uploads.SetIngestLog(ingestLog)
	uploads.SetObserver(metrics)
	uploads.SetCleanup(true)

	return &cli.Services{
		Chat:        chat,
		Search:      retrieval,
		Documents:   documents,
		Uploads:     uploads,
		Metrics:     metrics,
		Extractable: registry.FileTypes(),
		Warnings:    aiResult.Warnings,
		Close: func() error {
			aiResult.Close()
			return stores.Close()
		},
	}, nil
}
