package services

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Folder ingestion defaults.
const (
	DefaultIngestWorkers = 4
	DefaultDebounce      = 500 * time.Millisecond
)

// FolderIngestor feeds many files, or a stream of file changes, through a
// DocumentService.
type FolderIngestor struct {
	docs     driving.DocumentService
	workers  int
	debounce time.Duration
}

// NewFolderIngestor creates an ingestor. Non-positive workers or debounce
// use the defaults.
func NewFolderIngestor(docs driving.DocumentService, workers int, debounce time.Duration) *FolderIngestor {
	if workers <= 0 {
		workers = DefaultIngestWorkers
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FolderIngestor{docs: docs, workers: workers, debounce: debounce}
}

// IngestPaths ingests files concurrently and returns one result per path,
// in input order. A failed file does not stop the others; only context
// cancellation ends the batch early.
func (f *FolderIngestor) IngestPaths(ctx context.Context, paths []string) ([]domain.FileResult, error) {
	results := make([]domain.FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.ingest(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (f *FolderIngestor) ingest(ctx context.Context, path string) domain.FileResult {
	report, err := f.docs.IngestFile(ctx, path, filepath.Base(path))
	if err != nil {
		return domain.FileResult{Path: path, Error: err.Error()}
	}
	return domain.FileResult{Path: path, Report: report}
}

// Follow ingests each changed file once its events have been quiet for the
// debounce interval, so a file written in several chunks is read once.
// onResult, if set, receives every outcome. When changes is closed, pending
// files are still ingested; when ctx is cancelled they are dropped. Follow
// returns once no ingestion is running.
func (f *FolderIngestor) Follow(
	ctx context.Context,
	changes <-chan domain.FileChange,
	onResult func(domain.FileResult),
) {
	var (
		mu      sync.Mutex
		timers  = make(map[string]*time.Timer)
		running sync.WaitGroup
	)

	fire := func(path string, self **time.Timer) {
		mu.Lock()
		if timers[path] == *self {
			delete(timers, path)
		}
		mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		result := f.ingest(ctx, path)
		if result.OK() {
			logger.Info("watch: ingested %s (%d chunks)", path, result.Report.Chunks)
		} else {
			logger.Warn("watch: %s: %s", path, result.Error)
		}
		if onResult != nil {
			onResult(result)
		}
	}

	// stopPending drops debounced files that have not started yet.
	stopPending := func() {
		mu.Lock()
		for path, t := range timers {
			if t.Stop() {
				running.Done()
			}
			delete(timers, path)
		}
		mu.Unlock()
	}
	defer running.Wait()

	for {
		select {
		case <-ctx.Done():
			stopPending()
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			logger.Debug("watch: %s %s", change.Type, change.Path)

			mu.Lock()
			if t, exists := timers[change.Path]; exists && t.Stop() {
				running.Done()
			}
			path := change.Path
			running.Add(1)
			var t *time.Timer
			t = time.AfterFunc(f.debounce, func() {
				defer running.Done()
				fire(path, &t)
			})
			timers[path] = t
			mu.Unlock()
		}
	}
}
