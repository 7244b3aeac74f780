// Package plaintext extracts text files, decoding legacy single-byte
// encodings when the content is not valid UTF-8.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor reads .txt files.
type Extractor struct{}

// New creates a plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "plaintext" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string { return []string{"txt"} }

// Extract reads the file as UTF-8, falling back to Windows-1252.
func (e *Extractor) Extract(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return Decode(data)
}

// Decode converts raw bytes to a UTF-8 string. Windows-1252 is a superset
// of the printable ISO-8859-1 range, so it covers Latin-1 files as well.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
