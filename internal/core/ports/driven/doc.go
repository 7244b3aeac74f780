// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Maps text to fixed-dimension vectors
//   - VectorIndex: Persists vectors with metadata, answers cosine queries
//   - TextExtractor: Turns an uploaded file into plain text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, chat answers are extractive.
//   - IngestObserver: Receives ingestion step events.
//   - ConversationStore: Chat history. Without it, every question stands alone.
//   - PromptStore: User-editable prompt templates.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
