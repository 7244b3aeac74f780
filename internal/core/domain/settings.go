package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. It needs no service
	// and has no LLM.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Built-in (hashing, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendSQLite  VectorBackend = "sqlite"
	VectorBackendMemory  VectorBackend = "memory"
	VectorBackendChromem VectorBackend = "chromem"
	VectorBackendQdrant  VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendChromem, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if vectors survive a restart.
func (b VectorBackend) IsPersistent() bool {
	return b != VectorBackendMemory
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// CacheSize bounds the query embedding cache. Zero disables it.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the text model name.
	Model string

	// VisionModel is the model used to read images (Ollama only).
	VisionModel string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// Path is the data directory for file-backed indexes.
	Path string

	// URL is the server address for remote indexes.
	URL string

	// APIKey authenticates against remote indexes that require it.
	APIKey string

	// Collection names the collection holding the chunks.
	Collection string
}

// ChunkerSettings holds word-window chunking configuration.
type ChunkerSettings struct {
	// ChunkSize is the number of words per chunk.
	ChunkSize int

	// Overlap is the number of words shared by consecutive chunks.
	Overlap int

	// MaxChunks caps chunks per document.
	MaxChunks int
}

// RetrievalSettings holds query-time filtering configuration.
type RetrievalSettings struct {
	// TopK is the number of candidates fetched per query.
	TopK int

	// LenientImageOnly restricts the score > 0.1 tier to image-intent
	// queries. Off by default.
	LenientImageOnly bool
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Vector    VectorSettings
	Chunker   ChunkerSettings
	Retrieval RetrievalSettings
	Server    ServerSettings
}

// Chunker and retrieval defaults.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
	DefaultMaxChunks    = 15
	DefaultCollection   = "documents"
	DefaultServerAddr   = ":8000"
	DefaultCacheSize    = 1000
)

// DefaultAppSettings returns settings that work without any external service:
// the built-in embedder, the SQLite vector index and no LLM.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderLocal,
			CacheSize: DefaultCacheSize,
		},
		LLM: LLMSettings{},
		Vector: VectorSettings{
			Backend:    VectorBackendSQLite,
			Collection: DefaultCollection,
		},
		Chunker: ChunkerSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
			MaxChunks: DefaultMaxChunks,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns all available vector backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendSQLite,
		VectorBackendMemory,
		VectorBackendChromem,
		VectorBackendQdrant,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-384",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "gemma2:2b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// DefaultVisionModel is the Ollama model used to read images.
const DefaultVisionModel = "llava:7b"

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
