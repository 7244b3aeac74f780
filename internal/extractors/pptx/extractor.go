// Package pptx extracts slide text from PowerPoint presentations.
package pptx

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/extractors/ooxml"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads .pptx files.
type Extractor struct{}

// New creates a PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "pptx" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string { return []string{"pptx"} }

// Extract writes "Slide N:" followed by the slide's text lines, with a
// blank line between slides. Slides are numbered by position.
func (e *Extractor) Extract(_ context.Context, path, _ string) (string, error) {
	pkg, err := ooxml.Open(path)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	var b strings.Builder
	for i, name := range pkg.Numbered("ppt/slides/slide", ".xml") {
		data, err := pkg.Read(name)
		if err != nil {
			return "", err
		}
		paras, err := ooxml.Paragraphs(data, "t", "p")
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "Slide %d:\n", i+1)
		for _, p := range paras {
			b.WriteString(p)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
