package extractors

import (
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/extractors/csvfile"
	"github.com/custodia-labs/jarvis/internal/extractors/docx"
	"github.com/custodia-labs/jarvis/internal/extractors/image"
	"github.com/custodia-labs/jarvis/internal/extractors/pdf"
	"github.com/custodia-labs/jarvis/internal/extractors/plaintext"
	"github.com/custodia-labs/jarvis/internal/extractors/pptx"
	"github.com/custodia-labs/jarvis/internal/extractors/xlsx"
)

// RegisterDefaults registers the built-in extractors. PDF extraction needs
// pdftotext at run time. Images are only
// registered when a vision-capable LLM is available; prompts may be nil.
func RegisterDefaults(r *Registry, llm driven.LLMService, prompts driven.PromptStore) {
	r.Register(plaintext.New())
	r.Register(csvfile.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pptx.New())
	if llm != nil {
		r.Register(image.New(llm, prompts))
	}
}

// NewDefaultRegistry returns a registry with RegisterDefaults applied.
func NewDefaultRegistry(llm driven.LLMService, prompts driven.PromptStore) *Registry {
	r := NewRegistry()
	RegisterDefaults(r, llm, prompts)
	return r
}
