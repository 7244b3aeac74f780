// Package chunker splits extracted document text into overlapping word windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultMaxChunks caps the chunks produced for one document.
// Windows past the cap are dropped without notice.
const DefaultMaxChunks = domain.DefaultMaxChunks

// Processor splits text into fixed-size word windows.
type Processor struct {
	chunkSize int
	overlap   int
	maxChunks int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithMaxChunks sets the chunk cap. Values below one are ignored.
func WithMaxChunks(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChunks = n
		}
	}
}

// New creates a chunker. It fails with domain.ErrInvalidChunkConfig when
// the chunk size does not exceed the overlap or either is negative.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChunks: DefaultMaxChunks,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size in words.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in words.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split returns the chunk texts for text, in document order.
// Empty or whitespace-only text yields nil.
func (p *Processor) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	chunks := make([]string, 0, min(p.maxChunks, len(words)/step+1))

	for i := 0; i < len(words); i += step {
		end := min(i+p.chunkSize, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))

		if len(chunks) >= p.maxChunks || end == len(words) {
			break
		}
	}

	return chunks
}

// Chunk splits text and tags every window with its document fields.
func (p *Processor) Chunk(text, filename, fileType, docID string) ([]domain.Chunk, error) {
	texts := p.Split(text)
	chunks := make([]domain.Chunk, 0, len(texts))

	for i, t := range texts {
		c, err := domain.NewChunk(t, filename, fileType, i, docID)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}

// Split is a convenience wrapper for one-off splitting with the default cap.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	p, err := New(WithChunkSize(chunkSize), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}
	return p.Split(text), nil
}

func validate(chunkSize, overlap int) error {
	if overlap < 0 {
		return fmt.Errorf("%w: overlap %d is negative", domain.ErrInvalidChunkConfig, overlap)
	}
	if chunkSize <= overlap {
		return fmt.Errorf("%w: chunk size %d, overlap %d", domain.ErrInvalidChunkConfig, chunkSize, overlap)
	}
	return nil
}
