package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestService = (*IngestionPipeline)(nil)

// IngestionPipeline embeds the chunks of one document and writes them to
// the vector index in a single batch.
type IngestionPipeline struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewIngestionPipeline creates a pipeline over a shared embedder and index.
func NewIngestionPipeline(embedder driven.EmbeddingService, index driven.VectorIndex) *IngestionPipeline {
	return &IngestionPipeline{
		embedder: embedder,
		index:    index,
	}
}

// Ingest embeds and upserts chunks under docID.
// Empty input returns false without touching the index. Embedding and
// index failures are logged and reported as false.
func (p *IngestionPipeline) Ingest(ctx context.Context, chunks []domain.Chunk, docID string) bool {
	if err := p.TryIngest(ctx, chunks, docID); err != nil {
		logger.Error("ingest %s: %v", docID, err)
		return false
	}
	return true
}

// TryIngest is Ingest with the failure reason.
func (p *IngestionPipeline) TryIngest(ctx context.Context, chunks []domain.Chunk, docID string) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to ingest", domain.ErrInvalidInput)
	}
	if docID == "" {
		return fmt.Errorf("%w: empty doc id", domain.ErrInvalidInput)
	}
	if p.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if p.index == nil {
		return domain.ErrVectorIndexUnavailable
	}

	logger.Section("Ingestion")
	logger.Debug("Doc: %s, chunks: %d, model: %s", docID, len(chunks), p.embedder.ModelName())

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embed chunks: %w", domain.ErrIngestFailed, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrIngestFailed, len(vectors), len(chunks))
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		meta := c.Metadata()
		meta.DocID = docID
		records[i] = domain.VectorRecord{
			ID:       domain.RecordID(docID, c.Index),
			Vector:   vectors[i],
			Metadata: meta,
		}
	}

	if err := p.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrIngestFailed, err)
	}

	logger.Info("Ingested %d chunks for %s", len(records), docID)
	return nil
}
