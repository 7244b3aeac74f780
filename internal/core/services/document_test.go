package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

const sampleText = "JARVIS was developed by Tony Stark as an AI assistant."

type documentFixture struct {
	svc   *DocumentService
	log   *recordingObserver
	index *mockVectorIndex
	dir   string
}

func newDocumentFixture(t *testing.T, ext *mockExtractor, types ...string) *documentFixture {
	t.Helper()
	index := &mockVectorIndex{}
	log := &recordingObserver{}
	pipeline := NewIngestionPipeline(&mockEmbeddingService{}, index)
	svc := NewDocumentService(newMockRegistry(ext, types...), &mockChunker{}, pipeline, func() string { return "abc" })
	svc.SetIngestLog(log)
	return &documentFixture{svc: svc, log: log, index: index, dir: t.TempDir()}
}

func (f *documentFixture) writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("raw bytes"), 0o600))
	return path
}

func TestDocumentService_IngestFile_Success(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{text: sampleText}, "txt")
	path := f.writeFile(t, "notes.txt")

	report, err := f.svc.IngestFile(context.Background(), path, "notes.txt")

	require.NoError(t, err)
	assert.Equal(t, &domain.IngestReport{
		DocID:      "notes.txt_abc",
		Filename:   "notes.txt",
		FileType:   "txt",
		TextLength: len(sampleText),
		Chunks:     1,
	}, report)
	assert.Equal(t, []domain.IngestStep{
		domain.StepStart,
		domain.StepFileCheck,
		domain.StepTextExtraction,
		domain.StepTextPreview,
		domain.StepChunking,
		domain.StepChunkPreview,
		domain.StepPrepareMetadata,
		domain.StepVectorIngest,
		domain.StepFinal,
	}, f.log.steps())

	require.Len(t, f.index.upserts, 1)
	assert.Equal(t, "notes.txt_abc_chunk_0", f.index.upserts[0][0].ID)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "file is kept without cleanup")
}

func TestDocumentService_IngestFile_Cleanup(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{text: sampleText}, "txt")
	f.svc.SetCleanup(true)
	path := f.writeFile(t, "upload.txt")

	_, err := f.svc.IngestFile(context.Background(), path, "upload.txt")

	require.NoError(t, err)
	steps := f.log.steps()
	require.GreaterOrEqual(t, len(steps), 2)
	assert.Equal(t, domain.StepCleanup, steps[len(steps)-2])
	assert.Equal(t, domain.StepFinal, steps[len(steps)-1])
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDocumentService_IngestFile_CleanupAfterFailure(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{text: "tiny"}, "txt")
	f.svc.SetCleanup(true)
	path := f.writeFile(t, "upload.txt")

	_, err := f.svc.IngestFile(context.Background(), path, "upload.txt")

	require.ErrorIs(t, err, domain.ErrTextTooShort)
	steps := f.log.steps()
	assert.Equal(t, domain.StepCleanup, steps[len(steps)-1])
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDocumentService_IngestFile_Failures(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		extractor  *mockExtractor
		types      []string
		wantErr    error
		failedStep domain.IngestStep
	}{
		{"unsupported extension", "tool.exe", &mockExtractor{text: sampleText}, []string{"exe"}, domain.ErrUnsupportedFormat, domain.StepFileCheck},
		{"no extractor", "notes.doc", &mockExtractor{text: sampleText}, nil, domain.ErrUnsupportedFormat, domain.StepTextExtraction},
		{"empty text", "blank.txt", &mockExtractor{text: "  \n "}, []string{"txt"}, domain.ErrEmptyText, domain.StepTextExtraction},
		{"short text", "short.txt", &mockExtractor{text: "too short"}, []string{"txt"}, domain.ErrTextTooShort, domain.StepTextExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t, tt.extractor, tt.types...)
			path := f.writeFile(t, tt.filename)

			report, err := f.svc.IngestFile(context.Background(), path, tt.filename)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, report)
			assert.Empty(t, f.index.upserts)

			events := f.log.Recent(0)
			require.GreaterOrEqual(t, len(events), 3)
			failed := events[len(events)-2]
			assert.Equal(t, tt.failedStep, failed.Step)
			assert.Equal(t, domain.StatusFailed, failed.Status)
			last := events[len(events)-1]
			assert.Equal(t, domain.StepError, last.Step)
			assert.Equal(t, domain.StatusError, last.Status)
		})
	}
}

func TestDocumentService_IngestFile_ExtractorError(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{err: errors.New("corrupt archive")}, "docx")
	path := f.writeFile(t, "broken.docx")

	_, err := f.svc.IngestFile(context.Background(), path, "broken.docx")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt archive")
}

func TestDocumentService_IngestFile_MissingFile(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{text: sampleText}, "txt")

	_, err := f.svc.IngestFile(context.Background(), filepath.Join(f.dir, "gone.txt"), "gone.txt")

	require.Error(t, err)
	steps := f.log.steps()
	assert.Equal(t, domain.StepFileCheck, steps[1])
}

func TestDocumentService_IngestFile_IndexFailure(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{text: sampleText}, "txt")
	f.index.upsertErr = errors.New("disk full")
	path := f.writeFile(t, "notes.txt")

	_, err := f.svc.IngestFile(context.Background(), path, "notes.txt")

	require.ErrorIs(t, err, domain.ErrIngestFailed)
	events := f.log.Recent(2)
	assert.Equal(t, domain.StepVectorIngest, events[0].Step)
	assert.Equal(t, domain.StatusFailed, events[0].Status)
	assert.Equal(t, "notes.txt_abc", events[0].DocID)
}

func TestDocumentService_IngestFile_DefaultsFilename(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{text: sampleText}, "txt")
	path := f.writeFile(t, "fromdisk.txt")

	report, err := f.svc.IngestFile(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, "fromdisk.txt_abc", report.DocID)
}

func TestDocumentService_IngestText(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{})

	report, err := f.svc.IngestText(context.Background(), sampleText, "pasted.txt")

	require.NoError(t, err)
	assert.Equal(t, "pasted.txt_abc", report.DocID)
	assert.Equal(t, "txt", report.FileType)
	assert.Equal(t, domain.StepFinal, f.log.steps()[len(f.log.steps())-1])

	_, err = f.svc.IngestText(context.Background(), "short", "pasted.txt")
	assert.ErrorIs(t, err, domain.ErrTextTooShort)
}

func TestDocumentService_ChunkerError(t *testing.T) {
	index := &mockVectorIndex{}
	svc := NewDocumentService(nil, &mockChunker{err: domain.ErrInvalidChunkConfig},
		NewIngestionPipeline(&mockEmbeddingService{}, index), func() string { return "x" })

	_, err := svc.IngestText(context.Background(), sampleText, "a.txt")

	require.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
	assert.Empty(t, index.upserts)
}

func TestDocumentService_Observer(t *testing.T) {
	f := newDocumentFixture(t, &mockExtractor{})
	extra := &recordingObserver{}
	f.svc.SetObserver(extra)

	_, err := f.svc.IngestText(context.Background(), sampleText, "pasted.txt")
	require.NoError(t, err)

	assert.Equal(t, f.log.steps(), extra.steps())
	assert.Equal(t, f.log.Recent(3), f.svc.RecentEvents(3))
}

func TestDocumentService_RecentEvents_NoLog(t *testing.T) {
	svc := NewDocumentService(nil, &mockChunker{}, nil, func() string { return "x" })
	assert.Empty(t, svc.RecentEvents(10))
}
