package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// Preview lengths for the ingestion trail.
const (
	textPreviewChars  = 200
	chunkPreviewChars = 100
)

// DocumentService turns uploaded files into indexed chunks and reports
// every step to its observers.
type DocumentService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	pipeline   *IngestionPipeline
	newID      func() string
	observer   driven.IngestObserver
	log        driven.IngestLog
	cleanup    bool
	now        func() time.Time
}

// NewDocumentService creates a document service.
// newID supplies the unique suffix of every doc id.
func NewDocumentService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	pipeline *IngestionPipeline,
	newID func() string,
) *DocumentService {
	return &DocumentService{
		extractors: extractors,
		chunker:    chunker,
		pipeline:   pipeline,
		newID:      newID,
		now:        time.Now,
	}
}

// SetObserver sets an additional observer, e.g. metrics.
func (s *DocumentService) SetObserver(observer driven.IngestObserver) {
	s.observer = observer
}

// SetIngestLog sets the retained event log served by RecentEvents.
func (s *DocumentService) SetIngestLog(log driven.IngestLog) {
	s.log = log
}

// SetCleanup makes IngestFile delete the file once processing ends,
// whatever the outcome. Used for temporary upload files.
func (s *DocumentService) SetCleanup(enabled bool) {
	s.cleanup = enabled
}

// RecentEvents returns up to n of the newest ingestion events.
func (s *DocumentService) RecentEvents(n int) []domain.IngestEvent {
	if s.log == nil {
		return []domain.IngestEvent{}
	}
	return s.log.Recent(n)
}

// IngestFile extracts, chunks and indexes the file at path.
// Files with unsupported extensions, failed extraction or fewer than
// domain.MinExtractedTextLength characters of text are rejected.
func (s *DocumentService) IngestFile(ctx context.Context, path, filename string) (*domain.IngestReport, error) {
	if filename == "" {
		filename = filepath.Base(path)
	}
	trail := s.trail(filename)
	trail.emit(domain.StepStart, domain.StatusStarted, "Processing "+path)

	report, err := s.ingestFile(ctx, trail, path, filename)
	if s.cleanup {
		s.remove(trail, path)
	}
	if err != nil {
		return nil, err
	}

	trail.emit(domain.StepFinal, domain.StatusSuccess, "Ingested "+report.DocID)
	return report, nil
}

func (s *DocumentService) ingestFile(
	ctx context.Context,
	trail *ingestTrail,
	path, filename string,
) (*domain.IngestReport, error) {
	fileType := domain.FileTypeOf(filename)
	if !domain.IsSupportedFormat(filename) {
		return nil, trail.fail(domain.StepFileCheck, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filename))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, trail.fail(domain.StepFileCheck, fmt.Errorf("stat file: %w", err))
	}
	trail.emit(domain.StepFileCheck, domain.StatusSuccess, fmt.Sprintf("%d bytes, type %s", info.Size(), fileType))

	text, err := s.extract(ctx, path, filename, fileType)
	if err != nil {
		return nil, trail.fail(domain.StepTextExtraction, err)
	}
	trail.emit(domain.StepTextExtraction, domain.StatusSuccess,
		fmt.Sprintf("Extracted %d characters", utf8.RuneCountInString(text)))

	return s.index(ctx, trail, text, filename, fileType)
}

func (s *DocumentService) remove(trail *ingestTrail, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		trail.emit(domain.StepCleanup, domain.StatusFailed, err.Error())
		return
	}
	trail.emit(domain.StepCleanup, domain.StatusSuccess, "Removed "+path)
}

// IngestText chunks and indexes text that was extracted elsewhere.
func (s *DocumentService) IngestText(ctx context.Context, text, filename string) (*domain.IngestReport, error) {
	trail := s.trail(filename)
	trail.emit(domain.StepStart, domain.StatusStarted, "Processing text")

	if err := checkTextLength(text); err != nil {
		return nil, trail.fail(domain.StepTextExtraction, err)
	}
	report, err := s.index(ctx, trail, text, filename, domain.FileTypeOf(filename))
	if err != nil {
		return nil, err
	}

	trail.emit(domain.StepFinal, domain.StatusSuccess, "Ingested "+report.DocID)
	return report, nil
}

func (s *DocumentService) extract(ctx context.Context, path, filename, fileType string) (string, error) {
	if s.extractors == nil {
		return "", fmt.Errorf("%w: no extractors configured", domain.ErrUnsupportedFormat)
	}
	extractor := s.extractors.Get(fileType)
	if extractor == nil {
		return "", fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedFormat, fileType)
	}

	logger.Debug("Extracting %s with %s", filename, extractor.Name())
	text, err := extractor.Extract(ctx, path, filename)
	if err != nil {
		return "", fmt.Errorf("%s extractor: %w", extractor.Name(), err)
	}
	if err := checkTextLength(text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *DocumentService) index(
	ctx context.Context,
	trail *ingestTrail,
	text, filename, fileType string,
) (*domain.IngestReport, error) {
	docID := filename + "_" + s.newID()
	trail.docID = docID
	trail.emit(domain.StepTextPreview, domain.StatusInfo, truncateRunes(text, textPreviewChars))

	chunks, err := s.chunker.Chunk(text, filename, fileType, docID)
	if err != nil {
		return nil, trail.fail(domain.StepChunking, err)
	}
	if len(chunks) == 0 {
		return nil, trail.fail(domain.StepChunking, domain.ErrEmptyText)
	}
	trail.emit(domain.StepChunking, domain.StatusSuccess, fmt.Sprintf("Created %d chunks", len(chunks)))
	trail.emit(domain.StepChunkPreview, domain.StatusInfo, truncateRunes(chunks[0].Text, chunkPreviewChars))
	trail.emit(domain.StepPrepareMetadata, domain.StatusSuccess, fmt.Sprintf("Prepared metadata for %d chunks", len(chunks)))

	if err := s.pipeline.TryIngest(ctx, chunks, docID); err != nil {
		return nil, trail.fail(domain.StepVectorIngest, err)
	}
	trail.emit(domain.StepVectorIngest, domain.StatusSuccess, fmt.Sprintf("Stored %d vectors", len(chunks)))

	return &domain.IngestReport{
		DocID:      docID,
		Filename:   filename,
		FileType:   fileType,
		TextLength: utf8.RuneCountInString(text),
		Chunks:     len(chunks),
	}, nil
}

func checkTextLength(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n == 0:
		return domain.ErrEmptyText
	case n < domain.MinExtractedTextLength:
		return fmt.Errorf("%w: %d characters", domain.ErrTextTooShort, n)
	default:
		return nil
	}
}

// ingestTrail reports the steps of one ingestion.
type ingestTrail struct {
	svc      *DocumentService
	filename string
	docID    string
}

func (s *DocumentService) trail(filename string) *ingestTrail {
	return &ingestTrail{svc: s, filename: filename}
}

func (t *ingestTrail) emit(step domain.IngestStep, status domain.IngestStatus, details string) {
	event := domain.IngestEvent{
		Time:     t.svc.now(),
		Filename: t.filename,
		DocID:    t.docID,
		Step:     step,
		Status:   status,
		Details:  details,
	}
	logger.Debug("[%s] %s %s: %s", t.filename, step, status, details)
	if t.svc.log != nil {
		t.svc.log.Observe(event)
	}
	if t.svc.observer != nil {
		t.svc.observer.Observe(event)
	}
}

// fail reports a failed step followed by the terminal ERROR event and
// returns err for the caller.
func (t *ingestTrail) fail(step domain.IngestStep, err error) error {
	t.emit(step, domain.StatusFailed, err.Error())
	t.emit(domain.StepError, domain.StatusError, err.Error())
	logger.Warn("ingest %s failed at %s: %v", t.filename, step, err)
	return err
}
