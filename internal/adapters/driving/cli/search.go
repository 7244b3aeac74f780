package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

const searchPreviewChars = 200

var (
	searchTopK int
	searchJSON bool
	searchRaw  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Retrieves the passages most similar to the query.

Results are filtered by relevance the same way chat answers are. Use --raw
to see every candidate the vector index returned before filtering.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "number of candidates to retrieve")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchRaw, "raw", false, "show unfiltered candidates")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	var matches []domain.SearchMatch
	if searchRaw {
		matches, err = svc.Search.Candidates(cmd.Context(), query, searchTopK)
	} else {
		result := svc.Search.Search(cmd.Context(), query, searchTopK)
		matches, err = result.Matches, result.Err
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, matches)
	}
	return outputSearchTable(cmd, query, matches)
}

func outputSearchTable(cmd *cobra.Command, query string, matches []domain.SearchMatch) error {
	if len(matches) == 0 {
		cmd.Printf("No passages matched %q.\n", query)
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, m := range matches {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, m.Source(), m.Score)
		if text := snippet(m.Metadata.Text, searchPreviewChars); text != "" {
			cmd.Printf("      %s\n", text)
		}
		cmd.Println()
	}
	return nil
}

// snippet collapses whitespace and truncates to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
