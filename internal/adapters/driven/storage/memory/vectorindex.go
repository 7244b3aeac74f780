package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory driven.VectorIndex using exact cosine search.
// Records keep insertion order; an upsert of an existing key replaces it in place.
type VectorIndex struct {
	mu      sync.RWMutex
	records []domain.VectorRecord
	byID    map[string]int
	dims    int
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		byID: make(map[string]int),
	}
}

// Upsert inserts or replaces records by ID.
// All vectors in one index must share a dimension.
func (v *VectorIndex) Upsert(_ context.Context, records []domain.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	dims := v.dims
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record id is empty", domain.ErrInvalidInput)
		}
		if dims == 0 {
			dims = len(r.Vector)
		}
		if len(r.Vector) != dims {
			return fmt.Errorf("%w: record %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), dims)
		}
	}
	v.dims = dims

	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		if i, ok := v.byID[r.ID]; ok {
			v.records[i] = r
			continue
		}
		v.byID[r.ID] = len(v.records)
		v.records = append(v.records, r)
	}
	return nil
}

// Query returns the topK most similar records.
func (v *VectorIndex) Query(_ context.Context, vector []float32, topK int) ([]domain.SearchMatch, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.dims != 0 && len(vector) != v.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(vector), v.dims)
	}
	return vecmath.Rank(v.records, vector, topK), nil
}

// Count returns the number of stored records.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records), nil
}

// Clear removes every record.
func (v *VectorIndex) Clear(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = nil
	v.byID = make(map[string]int)
	v.dims = 0
	return nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
