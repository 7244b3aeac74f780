package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/jarvis/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API used by web front ends.

Routes:
  POST /chat                   ask a question
  POST /upload                 upload a file for background ingestion
  GET  /supported-formats      list accepted file types
  GET  /debug-search/{query}   inspect retrieval for a query
  GET  /debug-upload-logs      recent ingestion events
  GET  /health                 liveness check
  GET  /metrics                Prometheus metrics

The listen address defaults to the server address in settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, then :8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(httpapi.Deps{
		Chat:    svc.Chat,
		Search:  svc.Search,
		Uploads: svc.Uploads,
		Metrics: svc.Metrics,
		Version: version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, w := range svc.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
	addr := resolveServerAddr(serveAddr)
	cmd.Printf("Jarvis API listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// resolveServerAddr prefers the flag, then settings, then the default.
func resolveServerAddr(flag string) string {
	if flag != "" {
		return flag
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Server.Addr != "" {
			return s.Server.Addr
		}
	}
	return domain.DefaultServerAddr
}
