// Package pdf extracts text from PDF files with the pdftotext tool from
// poppler.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Tool is the external command used for extraction.
const Tool = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run looks the command up in PATH and runs it.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		if name == Tool {
			return nil, fmt.Errorf("%w. %s", ErrPDFToolNotFound, InstallInstructions())
		}
		return nil, err
	}

	out, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

// Extractor reads .pdf files.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor that runs pdftotext.
func New() *Extractor {
	return NewWithRunner(ExecRunner{})
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "pdf" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string { return []string{"pdf"} }

// Extract returns the text of every page, pages separated by a newline.
func (e *Extractor) Extract(ctx context.Context, path, _ string) (string, error) {
	out, err := e.runner.Run(ctx, Tool, "-enc", "UTF-8", "-q", path, "-")
	if err != nil {
		if errors.Is(err, ErrPDFToolNotFound) {
			return "", err
		}
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return cleanOutput(string(out)), nil
}

// cleanOutput turns the form feeds between pages into newlines and trims
// trailing space from every line.
func cleanOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(Tool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return "Install pdftotext from poppler: 'brew install poppler' (macOS) or 'apt install poppler-utils' (Debian/Ubuntu)"
}
