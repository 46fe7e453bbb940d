// ABOUTME: CLI command to generate an embedding for a text
// ABOUTME: Supports cache bypass and JSON output of the full vector
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbrook/engram/internal/embedding"
)

var (
	embedSkipCache bool
)

// NewEmbedCmd creates the embed command
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <text>",
		Short: "Generate an embedding vector",
		Long: `Generate an embedding vector for a text.

Cached results are reused; pass --skip-cache to force a fresh
model call.

Examples:
  engram embed "the quick brown fox"
  engram embed --skip-cache "the quick brown fox"
  engram embed --format json "the quick brown fox"`,
		Args: cobra.ExactArgs(1),
		RunE: runEmbed,
	}

	cmd.Flags().BoolVar(&embedSkipCache, "skip-cache", false, "Bypass the embedding cache")

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	text := args[0]
	vector, err := rt.engine.Generate(ctx, text, embedding.Options{SkipCache: embedSkipCache})
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"text":      text,
			"provider":  rt.prov.Name(),
			"dimension": len(vector),
			"embedding": vector,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Provider:  %s\n", rt.prov.Name())
	fmt.Fprintf(cmd.OutOrStdout(), "Dimension: %d\n", len(vector))

	preview := vector
	if len(preview) > 8 {
		preview = preview[:8]
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vector:    %v ...\n", preview)

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nUse --format json for the full vector\n")
	}
	return nil
}
