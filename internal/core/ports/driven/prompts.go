package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when there is none.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptChatSystem is the system prompt for document question answering.
	// It has no placeholders.
	PromptChatSystem = "chat_system"

	// PromptChatAnswer wraps one question with its retrieved context.
	// Placeholders, in order: %s context, %s question.
	PromptChatAnswer = "chat_answer"

	// PromptImageText asks a vision model to transcribe an image.
	// It has no placeholders.
	PromptImageText = "image_text"
)
