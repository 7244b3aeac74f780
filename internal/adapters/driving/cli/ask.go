package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a single question from the indexed documents.

Pass --session to keep a conversation going across invocations; the
previous turns of that session are sent to the model with the question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "conversation id to continue")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	resp, err := svc.Chat.Ask(cmd.Context(), domain.ChatRequest{
		Message:   strings.Join(args, " "),
		SessionID: askSession,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, resp)
	}

	cmd.Println(resp.Response)
	if resp.Status == domain.AnswerFallback {
		cmd.Println()
		cmd.Println("(language model unavailable, answer built from the retrieved passages)")
	}
	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range resp.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}
