// Package cache wraps an embedding service with an expiring LRU cache.
// Repeated queries and re-ingested chunks skip the embedding backend.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultTTL is how long a cached embedding stays valid.
const DefaultTTL = time.Hour

// EmbeddingService caches the vectors returned by another embedding service.
type EmbeddingService struct {
	next  driven.EmbeddingService
	cache *expirable.LRU[string, []float32]
}

// Wrap returns next behind a cache of at most size entries.
// A nil next, size <= 0 or ttl <= 0 returns next unchanged.
func Wrap(next driven.EmbeddingService, size int, ttl time.Duration) driven.EmbeddingService {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &EmbeddingService{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed returns a cached vector or embeds and caches text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	if v, ok := s.cache.Get(key); ok {
		logger.Debug("embedding cache hit")
		return clone(v), nil
	}
	v, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, clone(v))
	return v, nil
}

// EmbedBatch serves cached texts and embeds the rest in one batch call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, ok := s.cache.Get(s.key(text)); ok {
			out[i] = clone(v)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := s.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vectors {
		if j >= len(missingIdx) {
			break
		}
		out[missingIdx[j]] = v
		s.cache.Add(s.key(missing[j]), clone(v))
	}
	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missing), len(missing))
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close purges the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	return s.cache.Len()
}

func (s *EmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return s.next.ModelName() + ":" + hex.EncodeToString(sum[:])
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
