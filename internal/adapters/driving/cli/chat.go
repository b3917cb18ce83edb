package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilah-labs/pilah/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the waste chatbot in the terminal",
	Long: `Launch an interactive chat about waste handling.

Controls:
  Enter        - Ask
  PgUp/PgDown  - Scroll the transcript
  Ctrl+S       - Toggle sources
  Ctrl+L       - Clear the transcript
  Esc, Ctrl+C  - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}

	cmd.Println("Preparing chatbot...")
	chat, err := b.Chat(cmd.Context())
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{Chat: chat})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
