package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/connectors/filesystem"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	coreservices "github.com/custodia-labs/jarvis/internal/core/services"
)

var (
	watchInitial  bool
	watchDebounce time.Duration
	watchWorkers  int
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Ingest new and changed files in a folder",
	Long: `Watches a folder and its subfolders and ingests every supported file that
is created or written, until interrupted.

Use --initial to ingest the files already in the folder first.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest existing files before watching")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", coreservices.DefaultDebounce, "quiet period before a changed file is read")
	watchCmd.Flags().IntVarP(&watchWorkers, "workers", "w", coreservices.DefaultIngestWorkers, "files ingested in parallel by --initial")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn := filesystem.New(args[0])
	if err := conn.Validate(); err != nil {
		return err
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingestor := coreservices.NewFolderIngestor(svc.Documents, watchWorkers, watchDebounce)

	if watchInitial {
		files, err := conn.Files(ctx)
		if err != nil {
			return err
		}
		results, err := ingestor.IngestPaths(ctx, files)
		if err != nil {
			return fmt.Errorf("initial ingest interrupted: %w", err)
		}
		printIngestResults(cmd, results)
	}

	changes, err := conn.Watch(ctx)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck

	cmd.Printf("Watching %s (press Ctrl+C to stop)\n", conn.Root())
	ingestor.Follow(ctx, changes, func(r domain.FileResult) {
		if r.OK() {
			cmd.Printf("  ok    %s (%d chunks)\n", r.Path, r.Report.Chunks)
		} else {
			cmd.Printf("  fail  %s: %s\n", r.Path, r.Error)
		}
	})
	return nil
}
