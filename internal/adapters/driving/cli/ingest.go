package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/connectors/filesystem"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	coreservices "github.com/custodia-labs/jarvis/internal/core/services"
)

var (
	ingestWorkers int
	ingestJSON    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index files or folders",
	Long: `Extracts text from the given files, splits it into chunks and stores the
chunk embeddings in the vector index.

Folders are walked recursively; hidden files and unsupported formats are
skipped. Run 'jarvis formats' to list supported formats.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", coreservices.DefaultIngestWorkers, "files ingested in parallel")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths, err := collectFiles(cmd.Context(), args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No supported files found.")
		return nil
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	ingestor := coreservices.NewFolderIngestor(svc.Documents, ingestWorkers, 0)
	results, err := ingestor.IngestPaths(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("ingest interrupted: %w", err)
	}

	if ingestJSON {
		if err := outputJSON(cmd, results); err != nil {
			return err
		}
	} else {
		printIngestResults(cmd, results)
	}

	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// collectFiles expands folders into their supported files. Explicit file
// arguments are kept whatever their format so the failure is reported.
func collectFiles(ctx context.Context, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		files, err := filesystem.New(arg).Files(ctx)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

func printIngestResults(cmd *cobra.Command, results []domain.FileResult) {
	for _, r := range results {
		if r.OK() {
			cmd.Printf("  ok    %s (%s, %d chunks)\n", r.Path, r.Report.DocID, r.Report.Chunks)
		} else {
			cmd.Printf("  fail  %s: %s\n", r.Path, r.Error)
		}
	}
	cmd.Println()
	cmd.Printf("Ingested %d of %d files.\n", len(results)-countFailed(results), len(results))
}

func countFailed(results []domain.FileResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
