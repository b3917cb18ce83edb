package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the chatbot vector index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from the waste item database",
	Long: `Seeds the database if needed, then embeds every waste item and the
category definitions into a fresh vector index. Requires an embedding provider.`,
	RunE: runIndexRebuild,
}

var indexShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the documents the index is built from",
	RunE:  runIndexShow,
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexShowCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}
	seed, err := b.Seed(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := seed.Initialise(cmd.Context()); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	index, err := b.Index(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println("Rebuilding index...")
	stats, err := index.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	cmd.Printf("Indexed %d documents (fingerprint %s).\n", stats.Documents, shortFingerprint(stats.Fingerprint))
	return nil
}

func runIndexShow(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}
	index, err := b.Index(cmd.Context())
	if err != nil {
		return err
	}

	docs, err := index.Documents(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Documents (%d):\n\n", len(docs))
	for i := range docs {
		first, _, _ := strings.Cut(docs[i].Content, "\n")
		cmd.Printf("  [%d] %s\n", i+1, first)
		cmd.Printf("      Source: %s, Category: %s\n", docs[i].Metadata.Source, docs[i].Metadata.Category)
	}
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
