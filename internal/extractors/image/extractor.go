// Package image transcribes images with a vision-capable language model.
package image

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// TextPrefix marks chunks that hold transcribed image text. Chat looks for
// it to answer questions about images.
const TextPrefix = "Extracted text from image:\n"

// maxImageBytes bounds what is sent to the model.
const maxImageBytes = 20 << 20

const defaultPrompt = "Extract all text visible in this image. Return only the text, preserving line breaks."

// Extractor sends image bytes to the LLM and keeps its transcription.
type Extractor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// New creates an image extractor. prompts may be nil.
func New(llm driven.LLMService, prompts driven.PromptStore) *Extractor {
	return &Extractor{llm: llm, prompts: prompts}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "image" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string {
	return domain.SupportedFormats()[domain.FormatImage]
}

// Extract returns TextPrefix followed by the model's transcription.
func (e *Extractor) Extract(ctx context.Context, path, filename string) (string, error) {
	if e.llm == nil {
		return "", fmt.Errorf("%w: reading images needs a vision model", domain.ErrLLMUnavailable)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("%w: image is %d bytes, limit is %d", domain.ErrInvalidInput, info.Size(), maxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	logger.Debug("Transcribing %s with %s", filename, e.llm.ModelName())
	text, err := e.llm.Generate(ctx, e.prompt(), driven.GenerateOptions{
		Images:      [][]byte{data},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe image: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyText
	}
	return TextPrefix + text, nil
}

func (e *Extractor) prompt() string {
	if e.prompts == nil {
		return defaultPrompt
	}
	p, err := e.prompts.Load(driven.PromptImageText)
	if err != nil || p == "" {
		return defaultPrompt
	}
	return p
}
