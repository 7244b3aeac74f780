// Package chromem provides a vector index backed by chromem-go, an embedded
// vector database that persists each collection to a directory of gob files.
package chromem

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex stores chunks in one chromem collection.
type VectorIndex struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// New opens a persistent chromem database at path. An empty path keeps
// everything in memory.
func New(path, collection string) (*VectorIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("chromem: open %s: %w", path, err)
		}
	}
	if collection == "" {
		collection = domain.DefaultCollection
	}

	v := &VectorIndex{db: db, name: collection}
	if err := v.open(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *VectorIndex) open() error {
	c, err := v.db.GetOrCreateCollection(v.name, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return fmt.Errorf("chromem: collection %s: %w", v.name, err)
	}
	v.collection = c
	return nil
}

// Upsert adds records; an existing ID is overwritten. Records with a
// zero vector are skipped, since chromem would normalise them to NaN.
func (v *VectorIndex) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	metadatas := make([]map[string]string, 0, len(records))
	contents := make([]string, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record id is empty", domain.ErrInvalidInput)
		}
		if len(r.Vector) != len(records[0].Vector) {
			return fmt.Errorf("%w: record %s has %d dimensions, batch has %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), len(records[0].Vector))
		}
		if vecmath.IsZero(r.Vector) {
			logger.Debug("chromem: skipping %s, zero vector", r.ID)
			continue
		}
		ids = append(ids, r.ID)
		// chromem normalises vectors in place.
		vectors = append(vectors, append([]float32(nil), r.Vector...))
		metadatas = append(metadatas, r.Metadata.Map())
		contents = append(contents, r.Metadata.Text)
	}
	if len(ids) == 0 {
		return nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if err := v.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("chromem: add: %w", err)
	}
	return nil
}

// Query returns up to topK nearest records by cosine similarity. A zero
// query vector matches nothing.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchMatch, error) {
	if vecmath.IsZero(vector) {
		return []domain.SearchMatch{}, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	// chromem rejects nResults above the collection size.
	n := min(topK, v.collection.Count())
	if n <= 0 {
		return []domain.SearchMatch{}, nil
	}

	results, err := v.collection.QueryEmbedding(ctx, append([]float32(nil), vector...), n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	matches := make([]domain.SearchMatch, len(results))
	for i, r := range results {
		meta := domain.ChunkMetadataFromMap(r.Metadata)
		if meta.Text == "" {
			meta.Text = r.Content
		}
		matches[i] = domain.SearchMatch{
			ID:       r.ID,
			Score:    float64(r.Similarity),
			Metadata: meta,
		}
	}
	return matches, nil
}

// Count returns the number of stored records.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.collection.Count(), nil
}

// Clear drops and recreates the collection.
func (v *VectorIndex) Clear(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.db.DeleteCollection(v.name); err != nil {
		return fmt.Errorf("chromem: delete collection: %w", err)
	}
	return v.open()
}

// Close is a no-op; persistent writes happen on every Add.
func (v *VectorIndex) Close() error {
	return nil
}
