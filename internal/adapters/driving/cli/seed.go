package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

var seedListJSON bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the waste item database",
	Long: `Inserts the built-in waste items when the database is empty.
Running it again leaves an already seeded database untouched.`,
	RunE: runSeed,
}

var seedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the seeded waste items",
	RunE:  runSeedList,
}

func init() {
	seedListCmd.Flags().BoolVar(&seedListJSON, "json", false, "output items as JSON")
	seedCmd.AddCommand(seedListCmd)
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}
	svc, err := b.Seed(cmd.Context())
	if err != nil {
		return err
	}

	inserted, err := svc.Initialise(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if inserted == 0 {
		cmd.Println("Database already seeded, nothing inserted.")
		return nil
	}
	cmd.Printf("Inserted %d waste items.\n", inserted)
	return nil
}

func runSeedList(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}
	svc, err := b.Seed(cmd.Context())
	if err != nil {
		return err
	}

	items, err := svc.Items(cmd.Context())
	if err != nil {
		return err
	}

	if seedListJSON {
		if items == nil {
			items = []domain.WasteItem{}
		}
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal items: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		cmd.Println("No waste items. Run 'pilah seed' first.")
		return nil
	}

	for _, category := range domain.Categories() {
		cmd.Printf("[%s]\n", category)
		for _, item := range items {
			if item.Category == category {
				cmd.Printf("  %s - %s\n", item.Name, item.Description)
			}
		}
		cmd.Println()
	}
	cmd.Printf("%d items\n", len(items))
	return nil
}
