package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex stores chunk vectors in one collection of the vectors table.
type VectorIndex struct {
	store      *Store
	collection string
}

// Upsert inserts or replaces records in a single transaction.
func (v *VectorIndex) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	dims, err := v.dimensions(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record id is empty", domain.ErrInvalidInput)
		}
		if dims == 0 {
			dims = len(r.Vector)
		}
		if len(r.Vector) != dims {
			return fmt.Errorf("%w: record %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), dims)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO vectors
			(collection, id, doc_id, filename, file_type, chunk_id, text, dims, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeLayout)
	for _, r := range records {
		m := r.Metadata
		if _, err := stmt.ExecContext(ctx, v.collection, r.ID, m.DocID, m.Filename, m.FileType,
			m.ChunkID, m.Text, len(r.Vector), vecmath.Encode(r.Vector), now); err != nil {
			return fmt.Errorf("saving vector %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query scans the collection and returns the topK most similar records.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchMatch, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, doc_id, filename, file_type, chunk_id, text, embedding
		FROM vectors WHERE collection = ?
		ORDER BY rowid
	`, v.collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var records []domain.VectorRecord
	for rows.Next() {
		var (
			r    domain.VectorRecord
			blob []byte
		)
		if err := rows.Scan(&r.ID, &r.Metadata.DocID, &r.Metadata.Filename, &r.Metadata.FileType,
			&r.Metadata.ChunkID, &r.Metadata.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		r.Vector = vecmath.Decode(blob)
		if len(r.Vector) != len(vector) {
			return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, len(vector), len(r.Vector))
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	return vecmath.Rank(records, vector, topK), nil
}

// Count returns the number of records in the collection.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vectors WHERE collection = ?", v.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Clear deletes every record in the collection.
func (v *VectorIndex) Clear(ctx context.Context) error {
	if _, err := v.store.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE collection = ?", v.collection); err != nil {
		return fmt.Errorf("clearing vectors: %w", err)
	}
	return nil
}

// Close is a no-op; the Store owns the connection.
func (v *VectorIndex) Close() error {
	return nil
}

// dimensions returns the collection's vector size, or 0 when empty.
func (v *VectorIndex) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT dims FROM vectors WHERE collection = ? LIMIT 1", v.collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection dimensions: %w", err)
	}
	return dims, nil
}
