// Package qdrant provides a vector index backed by a Qdrant server over its
// REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// pointNamespace derives stable point UUIDs from record keys, since Qdrant
// only accepts UUIDs or integers as point IDs.
var pointNamespace = uuid.MustParse("7c4a5f39-2b0e-4b8e-9a43-5d0c1f0e6a11")

var errNotFound = errors.New("qdrant: not found")

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection name (default: documents).
	Collection string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// VectorIndex stores chunks as Qdrant points. The record key and chunk
// metadata travel in the point payload.
type VectorIndex struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string

	mu    sync.Mutex
	ready bool
}

// New creates a Qdrant index. The collection is created on first upsert,
// sized to the first vector, with cosine distance.
func New(cfg Config) *VectorIndex {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &VectorIndex{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// PointID returns the Qdrant point UUID for a record key.
func PointID(key string) string {
	return uuid.NewSHA1(pointNamespace, []byte(key)).String()
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Upsert writes records and waits for Qdrant to apply them.
func (v *VectorIndex) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record id is empty", domain.ErrInvalidInput)
		}
		if len(r.Vector) != len(records[0].Vector) {
			return fmt.Errorf("%w: record %s has %d dimensions, batch has %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), len(records[0].Vector))
		}
	}
	if err := v.ensureCollection(ctx, len(records[0].Vector)); err != nil {
		return err
	}

	points := make([]point, len(records))
	for i, r := range records {
		m := r.Metadata
		points[i] = point{
			ID:     PointID(r.ID),
			Vector: r.Vector,
			Payload: map[string]any{
				"key":       r.ID,
				"text":      m.Text,
				"filename":  m.Filename,
				"file_type": m.FileType,
				"chunk_id":  m.ChunkID,
				"doc_id":    m.DocID,
			},
		}
	}

	return v.do(ctx, http.MethodPut, "/collections/"+v.collection+"/points?wait=true",
		map[string]any{"points": points}, nil)
}

// Query returns the topK nearest points. A missing collection has no matches.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchMatch, error) {
	if topK <= 0 {
		return []domain.SearchMatch{}, nil
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := v.do(ctx, http.MethodPost, "/collections/"+v.collection+"/points/search", map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}, &resp)
	if errors.Is(err, errNotFound) {
		return []domain.SearchMatch{}, nil
	}
	if err != nil {
		return nil, err
	}

	matches := make([]domain.SearchMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, domain.SearchMatch{
			ID:       payloadString(r.Payload, "key"),
			Score:    r.Score,
			Metadata: payloadMetadata(r.Payload),
		})
	}
	return matches, nil
}

// Count returns the exact number of points.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := v.do(ctx, http.MethodPost, "/collections/"+v.collection+"/points/count",
		map[string]any{"exact": true}, &resp)
	if errors.Is(err, errNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Clear drops the collection. It is recreated on the next upsert.
func (v *VectorIndex) Clear(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	err := v.do(ctx, http.MethodDelete, "/collections/"+v.collection, nil, nil)
	if err != nil && !errors.Is(err, errNotFound) {
		return err
	}
	v.ready = false
	return nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

func (v *VectorIndex) ensureCollection(ctx context.Context, dims int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ready {
		return nil
	}

	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := v.do(ctx, http.MethodGet, "/collections/"+v.collection, nil, &info)
	switch {
	case err == nil:
		if size := info.Result.Config.Params.Vectors.Size; size != 0 && size != dims {
			return fmt.Errorf("%w: collection %s has %d dimensions, vectors have %d",
				domain.ErrDimensionMismatch, v.collection, size, dims)
		}
	case errors.Is(err, errNotFound):
		err = v.do(ctx, http.MethodPut, "/collections/"+v.collection, map[string]any{
			"vectors": map[string]any{"size": dims, "distance": "Cosine"},
		}, nil)
		if err != nil {
			return fmt.Errorf("creating collection %s: %w", v.collection, err)
		}
	default:
		return err
	}

	v.ready = true
	return nil
}

func (v *VectorIndex) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.url+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("api-key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort error body
		return fmt.Errorf("qdrant %s %s failed (status %d): %s", method, path, resp.StatusCode, string(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func payloadString(p map[string]any, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func payloadMetadata(p map[string]any) domain.ChunkMetadata {
	m := domain.ChunkMetadata{
		Text:     payloadString(p, "text"),
		Filename: payloadString(p, "filename"),
		FileType: payloadString(p, "file_type"),
		DocID:    payloadString(p, "doc_id"),
	}
	if id, ok := p["chunk_id"].(float64); ok {
		m.ChunkID = int(id)
	}
	return m
}
