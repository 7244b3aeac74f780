// Package docx extracts paragraph text from Word documents.
package docx

import (
	"context"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/extractors/ooxml"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor reads .docx files.
type Extractor struct{}

// New creates a DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "docx" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string { return []string{"docx"} }

// Extract returns the body paragraphs, table cells included, one per line.
func (e *Extractor) Extract(_ context.Context, path, _ string) (string, error) {
	pkg, err := ooxml.Open(path)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	data, err := pkg.Read(documentPart)
	if err != nil {
		return "", err
	}
	paras, err := ooxml.Paragraphs(data, "t", "p")
	if err != nil {
		return "", err
	}
	return strings.Join(paras, "\n"), nil
}
