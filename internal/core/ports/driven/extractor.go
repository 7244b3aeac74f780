package driven

import "context"

// TextExtractor turns a stored file into plain text.
// Extraction failures are reported as errors; an unreadable file must not
// panic the ingestion path.
type TextExtractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// Extensions returns the lowercase file extensions handled, without dots.
	Extensions() []string

	// Extract reads the file at path. filename is the original upload name.
	Extract(ctx context.Context, path, filename string) (string, error)
}

// ExtractorRegistry selects the extractor for a file type.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(extractor TextExtractor)

	// Get returns the extractor for a file type, or nil.
	Get(fileType string) TextExtractor

	// FileTypes returns every registered extension.
	FileTypes() []string
}
