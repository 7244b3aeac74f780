package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

const (
	defaultOllamaURL = "http://localhost:11434"
	defaultQdrantURL = "http://localhost:6333"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the vector index and chunking.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the provider that turns chunks and questions into vectors.

Changing the embedding model changes vector dimensions; re-ingest your
documents afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long: `Configure the language model that writes chat answers and reads images.

Without an LLM, answers are built from the retrieved passages.`,
	RunE: runSettingsLLM,
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Configure vector index backend",
	Long: `Select where chunk vectors are stored.

Available backends:
  sqlite   - Local SQLite database (default)
  memory   - In-process only, lost on exit
  chromem  - Local chromem-go database
  qdrant   - Qdrant server (requires a URL)`,
	RunE: runSettingsVector,
}

var (
	chunkingSize    int
	chunkingOverlap int
)

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Configure chunk size and overlap",
	Long: `Set the number of words per chunk and the words shared by consecutive
chunks. Omitted flags keep their current value. The overlap must be smaller
than the chunk size.`,
	RunE: runSettingsChunking,
}

func init() {
	settingsChunkingCmd.Flags().IntVar(&chunkingSize, "size", 0, "words per chunk")
	settingsChunkingCmd.Flags().IntVar(&chunkingOverlap, "overlap", -1, "words shared by consecutive chunks")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsVectorCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Query cache: %d\n", settings.Embedding.CacheSize)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (none, answers are extractive)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.Provider == domain.AIProviderOllama {
			cmd.Printf("  Vision model: %s\n", settings.LLM.VisionModel)
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", displayAPIKey(settings.LLM.APIKey))
		}
		cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	}
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend: %s\n", settings.Vector.Backend)
	if settings.Vector.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  URL: %s\n", settings.Vector.URL)
		cmd.Printf("  API Key: %s\n", displayAPIKey(settings.Vector.APIKey))
	} else if settings.Vector.Backend.IsPersistent() {
		path := settings.Vector.Path
		if path == "" {
			path = "(default data directory)"
		}
		cmd.Printf("  Path: %s\n", path)
	}
	cmd.Printf("  Collection: %s\n", settings.Vector.Collection)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d words\n", settings.Chunker.ChunkSize)
	cmd.Printf("  Overlap: %d words\n", settings.Chunker.Overlap)
	cmd.Printf("  Max chunks per document: %d\n", settings.Chunker.MaxChunks)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Lenient tier for image queries only: %t\n", settings.Retrieval.LenientImageOnly)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Jarvis Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Print("Configure a language model now? [Y/n]: ")
	if answer := strings.ToLower(readLine(reader)); answer == "n" || answer == "no" {
		cmd.Println("Skipped. Answers will be built from the retrieved passages.")
		cmd.Println()
	} else if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Select Vector Index")
	cmd.Println("---------------------------")
	if err := configureVectorBackend(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings are saved.")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureVectorBackend(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsChunking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	size, overlap := settings.Chunker.ChunkSize, settings.Chunker.Overlap
	if cmd.Flags().Changed("size") {
		size = chunkingSize
	}
	if cmd.Flags().Changed("overlap") {
		overlap = chunkingOverlap
	}

	if err := settingsService.SetChunking(size, overlap); err != nil {
		return fmt.Errorf("failed to configure chunking: %w", err)
	}
	cmd.Printf("Chunking set to %d words with %d words overlap.\n", size, overlap)
	cmd.Println("Documents ingested earlier keep their old chunks until re-ingested.")
	return nil
}

//nolint:dupl // Mirrors configureLLMProvider for the embedding flow
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	model := promptDefault(cmd, reader, "Enter model name", domain.DefaultEmbeddingModels()[provider])

	var baseURL string
	if provider == domain.AIProviderOllama {
		baseURL = promptDefault(cmd, reader, "Enter Ollama URL", defaultOllamaURL)
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if validator != nil {
		cmd.Print("Validating configuration... ")
		candidate := &domain.EmbeddingSettings{Provider: provider, Model: model, BaseURL: baseURL, APIKey: apiKey}
		if err := validator.ValidateEmbedding(candidate); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

//nolint:dupl // Mirrors configureEmbeddingProvider for the LLM flow
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	model := promptDefault(cmd, reader, "Enter model name", domain.DefaultLLMModels()[provider])

	var baseURL string
	if provider == domain.AIProviderOllama {
		baseURL = promptDefault(cmd, reader, "Enter Ollama URL", defaultOllamaURL)
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if validator != nil {
		cmd.Print("Validating configuration... ")
		candidate := &domain.LLMSettings{Provider: provider, Model: model, BaseURL: baseURL, APIKey: apiKey}
		if err := validator.ValidateLLM(candidate); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.SetLLMProvider(provider, model, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

func configureVectorBackend(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Vector Index")
	backends := domain.AllVectorBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	backend := backends[idx-1]

	var path, url string
	switch {
	case backend == domain.VectorBackendQdrant:
		url = promptDefault(cmd, reader, "Enter Qdrant URL", defaultQdrantURL)
	case backend.IsPersistent():
		cmd.Print("Enter data directory [default]: ")
		path = readLine(reader)
	}

	if err := settingsService.SetVectorBackend(backend, path, url); err != nil {
		return fmt.Errorf("failed to configure vector index: %w", err)
	}

	cmd.Printf("Vector index set to: %s\n", backend)
	cmd.Println("Documents must be re-ingested into a new backend.")
	cmd.Println()
	return nil
}

// Helper functions.

func promptDefault(cmd *cobra.Command, reader *bufio.Reader, label, def string) string {
	cmd.Printf("%s [%s]: ", label, def)
	if v := readLine(reader); v != "" {
		return v
	}
	return def
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal and falls back to the
// reader otherwise.
func readPassword(reader io.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	if br, ok := reader.(*bufio.Reader); ok {
		return readLine(br)
	}
	return readLine(bufio.NewReader(reader))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func displayAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
