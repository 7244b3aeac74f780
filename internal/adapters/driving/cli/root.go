// Package cli implements the jarvis command line with cobra.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services holds everything the commands run against. It is built by the
// Bootstrap function on first use so that settings and version commands
// start without touching the AI providers or the vector index.
type Services struct {
	Chat   driving.ChatService
	Search driving.SearchService

	// Documents ingests files in place.
	Documents driving.DocumentService

	// Uploads ingests temporary files and deletes them afterwards.
	Uploads driving.DocumentService

	// Metrics is optional.
	Metrics httpapi.Recorder

	// Extractable lists the file types an extractor is registered for.
	Extractable []string

	// Warnings are non-fatal start-up problems, such as a provider fallback.
	Warnings []string

	// Close releases the stores and provider clients.
	Close func() error
}

// Bootstrap builds the services.
type Bootstrap func(ctx context.Context) (*Services, error)

// Validator checks provider settings by contacting the provider.
type Validator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error
}

var (
	bootstrap       Bootstrap
	services        *Services
	settingsService driving.SettingsService
	validator       Validator
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "Chat with your documents",
	Long: `Jarvis indexes local documents and answers questions about them.

Ingest files with 'jarvis ingest', then ask questions with 'jarvis ask' or
open the interactive chat with 'jarvis chat'. 'jarvis serve' exposes the
same operations over HTTP and 'jarvis mcp serve' over MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap sets the function that builds the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetSettingsService sets the service used by the settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetValidator sets the provider check used when saving provider settings.
func SetValidator(v Validator) {
	validator = v
}

// SetVersion sets the version reported by the version command and servers.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and closes the services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// loadServices bootstraps the services once per process.
func loadServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}

	s, err := bootstrap(cmd.Context())
	if err != nil {
		return nil, err
	}
	services = s
	return services, nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	services = nil
}
