package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from <dir>/<name>.txt, writing the
// built-in defaults there on first use so they can be edited.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

//nolint:lll // prompt text
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `You are Jarvis, an assistant that answers questions about the user's uploaded documents.
Answer directly and factually, using only the document context you are given.`,

	driven.PromptChatAnswer: `CONTEXT INFORMATION:
%s

USER QUESTION: %s

INSTRUCTIONS:
- Provide a direct, concise answer to the question
- Use ONLY information from the context provided
- If the answer requires specific numbers or facts, include them precisely
- Maximum 2-3 sentences
- Do not say "based on the context" or similar phrases

If the context doesn't contain the answer, respond with: "The available documents don't contain information about this specific question."

ANSWER:`,

	driven.PromptImageText: `Extract all text visible in this image. Return only the text, preserving line breaks. If there is no text, describe the image in one sentence.`,
}

const promptReadme = `# Jarvis prompts

Each .txt file here is a prompt template. Edit a file to change how Jarvis
talks to the language model; delete it to restore the default.

- chat_system.txt: system prompt for document questions
- chat_answer.txt: wraps the retrieved context and the question.
  Keep both %s placeholders, context first.
- image_text.txt: asks the vision model to transcribe an uploaded image
`

// NewPromptStore creates a prompt store. No I/O happens until the first Load.
// If promptDir is empty, defaults to ~/.jarvis/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the named template, falling back to the built-in default
// when the file is missing or unreadable.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.readFile(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		if s.initErr != nil {
			return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.initErr))
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	for name, content := range files {
		path := filepath.Join(s.promptDir, name)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.initErr = fmt.Errorf("create %s: %w", name, err)
			return
		}
	}
}

// readFile returns the trimmed file content. An empty file counts as missing.
func (s *PromptStore) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("%s.txt is empty", name)
	}
	return prompt, nil
}
