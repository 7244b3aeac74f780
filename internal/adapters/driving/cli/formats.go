package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

var formatsJSON bool

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported file formats",
	Long: `Lists the file types accepted for ingestion, grouped by category.

Types marked with * are accepted but have no text extractor in this build,
so ingesting them fails with an extraction error.`,
	Args: cobra.NoArgs,
	RunE: runFormats,
}

func init() {
	formatsCmd.Flags().BoolVar(&formatsJSON, "json", false, "output formats as JSON")
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) error {
	formats := domain.SupportedFormats()

	if formatsJSON {
		out := make(map[string][]string, len(formats))
		for category, exts := range formats {
			out[string(category)+"_formats"] = exts
		}
		return outputJSON(cmd, out)
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	missing := false
	cmd.Println("Supported formats")
	cmd.Println("=================")
	for _, category := range domain.AllFormatCategories() {
		exts := formats[category]
		marked := make([]string, len(exts))
		for i, ext := range exts {
			marked[i] = ext
			if !slices.Contains(svc.Extractable, ext) {
				marked[i] += "*"
				missing = true
			}
		}
		cmd.Printf("  %-13s %s\n", string(category)+":", strings.Join(marked, ", "))
	}
	if missing {
		cmd.Println()
		cmd.Println("* no extractor available")
	}
	return nil
}
