package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// stubDocuments implements driving.DocumentService for folder tests.
type stubDocuments struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]bool
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func newStubDocuments() *stubDocuments {
	return &stubDocuments{calls: map[string]int{}, fail: map[string]bool{}}
}

func (s *stubDocuments) IngestFile(_ context.Context, path, filename string) (*domain.IngestReport, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		old := s.maxSeen.Load()
		if n <= old || s.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(s.delay)

	s.mu.Lock()
	s.calls[path]++
	fail := s.fail[path]
	s.mu.Unlock()

	if fail {
		return nil, errors.New("extraction failed")
	}
	return &domain.IngestReport{DocID: filename + "_x", Filename: filename, Chunks: 2}, nil
}

func (s *stubDocuments) IngestText(_ context.Context, _, _ string) (*domain.IngestReport, error) {
	return nil, errors.New("unused")
}

func (s *stubDocuments) RecentEvents(_ int) []domain.IngestEvent { return nil }

func (s *stubDocuments) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func TestNewFolderIngestor_Defaults(t *testing.T) {
	f := NewFolderIngestor(newStubDocuments(), 0, 0)

	assert.Equal(t, DefaultIngestWorkers, f.workers)
	assert.Equal(t, DefaultDebounce, f.debounce)
}

func TestFolderIngestor_IngestPaths(t *testing.T) {
	docs := newStubDocuments()
	docs.fail["/data/bad.pdf"] = true
	f := NewFolderIngestor(docs, 2, time.Millisecond)

	results, err := f.IngestPaths(context.Background(), []string{"/data/a.txt", "/data/bad.pdf", "/data/c.csv"})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "/data/a.txt", results[0].Path)
	assert.True(t, results[0].OK())
	assert.Equal(t, "a.txt_x", results[0].Report.DocID)
	assert.False(t, results[1].OK())
	assert.Equal(t, "extraction failed", results[1].Error)
	assert.True(t, results[2].OK())
}

func TestFolderIngestor_IngestPathsRespectsWorkerLimit(t *testing.T) {
	docs := newStubDocuments()
	docs.delay = 10 * time.Millisecond
	f := NewFolderIngestor(docs, 2, time.Millisecond)

	paths := []string{"/1.txt", "/2.txt", "/3.txt", "/4.txt", "/5.txt", "/6.txt"}
	_, err := f.IngestPaths(context.Background(), paths)

	require.NoError(t, err)
	assert.LessOrEqual(t, docs.maxSeen.Load(), int32(2))
	for _, p := range paths {
		assert.Equal(t, 1, docs.count(p))
	}
}

func TestFolderIngestor_IngestPathsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFolderIngestor(newStubDocuments(), 1, time.Millisecond)

	_, err := f.IngestPaths(ctx, []string{"/a.txt"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFolderIngestor_FollowDebounces(t *testing.T) {
	docs := newStubDocuments()
	f := NewFolderIngestor(docs, 1, 30*time.Millisecond)

	changes := make(chan domain.FileChange)
	var mu sync.Mutex
	var results []domain.FileResult
	done := make(chan struct{})
	go func() {
		f.Follow(context.Background(), changes, func(r domain.FileResult) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
		close(done)
	}()

	changes <- domain.FileChange{Type: domain.ChangeCreated, Path: "/w/report.txt"}
	changes <- domain.FileChange{Type: domain.ChangeUpdated, Path: "/w/report.txt"}
	changes <- domain.FileChange{Type: domain.ChangeUpdated, Path: "/w/report.txt"}
	changes <- domain.FileChange{Type: domain.ChangeCreated, Path: "/w/other.csv"}
	close(changes)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return")
	}

	assert.Equal(t, 1, docs.count("/w/report.txt"))
	assert.Equal(t, 1, docs.count("/w/other.csv"))
	mu.Lock()
	assert.Len(t, results, 2)
	mu.Unlock()
}

func TestFolderIngestor_FollowCancelDropsPending(t *testing.T) {
	docs := newStubDocuments()
	f := NewFolderIngestor(docs, 1, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	changes := make(chan domain.FileChange)
	done := make(chan struct{})
	go func() {
		f.Follow(ctx, changes, nil)
		close(done)
	}()

	changes <- domain.FileChange{Type: domain.ChangeCreated, Path: "/w/late.txt"}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
	assert.Equal(t, 0, docs.count("/w/late.txt"))
}
