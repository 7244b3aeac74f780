package ai

import (
	"context"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*unavailableEmbedding)(nil)

// unavailableEmbedding stands in for a configured embedder that could not be
// reached. It keeps the configured model name and fails every call.
type unavailableEmbedding struct {
	model      string
	dimensions int
	cause      error
}

func newUnavailableEmbedding(model string, cause error) *unavailableEmbedding {
	return &unavailableEmbedding{
		model:      model,
		dimensions: domain.EmbeddingDimensions()[model],
		cause:      cause,
	}
}

func (u *unavailableEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, u.cause
}

func (u *unavailableEmbedding) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, u.cause
}

func (u *unavailableEmbedding) Dimensions() int              { return u.dimensions }
func (u *unavailableEmbedding) ModelName() string            { return u.model }
func (u *unavailableEmbedding) Ping(_ context.Context) error { return u.cause }
func (u *unavailableEmbedding) Close() error                 { return nil }
