package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/adapters/driving/tui"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Opens a full-screen chat over your documents.

Type a question and press enter. '/search <query>' shows the passages
retrieval finds, '/new' starts a new conversation.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "conversation id to continue")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{Chat: svc.Chat, Search: svc.Search})
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).WithSessionID(chatSession).Run()
}
