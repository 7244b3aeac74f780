package domain

import "time"

// MinExtractedTextLength is the shortest extracted text worth ingesting.
const MinExtractedTextLength = 10

// IngestStep names one stage of file ingestion.
type IngestStep string

// Ingestion steps in the order they are reported.
const (
	StepStart           IngestStep = "START"
	StepFileCheck       IngestStep = "FILE_CHECK"
	StepTextExtraction  IngestStep = "TEXT_EXTRACTION"
	StepTextPreview     IngestStep = "TEXT_PREVIEW"
	StepChunking        IngestStep = "CHUNKING"
	StepChunkPreview    IngestStep = "CHUNK_PREVIEW"
	StepPrepareMetadata IngestStep = "PREPARE_METADATA"
	StepVectorIngest    IngestStep = "VECTOR_DB_INGEST"
	StepCleanup         IngestStep = "CLEANUP"
	StepFinal           IngestStep = "FINAL"
	StepError           IngestStep = "ERROR"
)

// IngestStatus is the outcome attached to an ingestion step.
type IngestStatus string

// Step outcomes.
const (
	StatusStarted IngestStatus = "STARTED"
	StatusSuccess IngestStatus = "SUCCESS"
	StatusFailed  IngestStatus = "FAILED"
	StatusInfo    IngestStatus = "INFO"
	StatusError   IngestStatus = "ERROR"
)

// IngestEvent records one step of one document's ingestion.
type IngestEvent struct {
	Time     time.Time    `json:"timestamp"`
	Filename string       `json:"filename"`
	DocID    string       `json:"doc_id,omitempty"`
	Step     IngestStep   `json:"step"`
	Status   IngestStatus `json:"status"`
	Details  string       `json:"details,omitempty"`
}

// IngestReport summarises a completed file ingestion.
type IngestReport struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	TextLength int    `json:"text_length"`
	Chunks     int    `json:"chunks"`
}
