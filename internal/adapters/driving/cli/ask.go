package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/styles"
	"github.com/pilah-labs/pilah/internal/core/domain"
)

var (
	askJSON    bool
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the waste chatbot a single question",
	Long: `Answers one question about waste handling from the waste item database.

The first run seeds the database and builds the vector index, which needs a
configured embedding provider.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the documents the answer is based on")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	b, err := backend()
	if err != nil {
		return err
	}
	chat, err := b.Chat(cmd.Context())
	if err != nil {
		return err
	}

	answer := chat.Ask(cmd.Context(), question)

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputAnswer(cmd, answer)
	return nil
}

func outputAnswer(cmd *cobra.Command, answer domain.Answer) {
	style := styles.StyleFor(answer.Status)
	cmd.Println(style.Render(fmt.Sprintf("[%s] %s", styles.Label(answer.Status), answer.Text)))

	if !askSources || len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i := range answer.Sources {
		first, _, _ := strings.Cut(answer.Sources[i].Content, "\n")
		cmd.Printf("  [%d] %s (%s)\n", i+1, first, answer.Sources[i].Metadata.Category)
	}
}
