// Package csvfile extracts CSV files as a dataset summary plus rows.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/extractors/plaintext"
	"github.com/custodia-labs/jarvis/internal/extractors/tabular"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads .csv files.
type Extractor struct{}

// New creates a CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "csv" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string { return []string{"csv"} }

// Extract parses the file with a lenient reader: ragged rows and stray
// quotes are accepted.
func (e *Extractor) Extract(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	text, err := plaintext.Decode(data)
	if err != nil {
		return "", err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: parse csv: %w", domain.ErrInvalidInput, err)
	}

	table := tabular.FromRecords("", records)
	if table.Header == nil {
		return "", nil
	}
	return table.Render(), nil
}
