// ABOUTME: CLI command to rank candidate texts by similarity to a query
// ABOUTME: Embeds the query and candidates, then applies threshold and limit
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mbrook/engram/internal/embedding"
	"github.com/mbrook/engram/internal/models"
	"github.com/mbrook/engram/internal/search"
)

var (
	similarThreshold float64
	similarLimit     int
)

// NewSimilarCmd creates the similar command
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <query> <text>...",
		Short: "Rank texts by semantic similarity",
		Long: `Rank candidate texts by cosine similarity to a query.

Texts below the similarity threshold are dropped; results are
sorted most-similar first.

Examples:
  engram similar "coffee" "I love espresso" "tax season is here"
  engram similar --threshold 0.5 --limit 3 "hiking" "trail maps" "lunch"`,
		Args: cobra.MinimumNArgs(2),
		RunE: runSimilar,
	}

	cmd.Flags().Float64Var(&similarThreshold, "threshold", search.DefaultThreshold, "Minimum cosine similarity")
	cmd.Flags().IntVar(&similarLimit, "limit", search.DefaultLimit, "Maximum results to return")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(similarLimit, "limit"); err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	query := args[0]
	texts := args[1:]

	queryVector, err := rt.engine.Generate(ctx, query, embedding.Options{})
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}

	vectors, err := rt.engine.GenerateBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding candidates: %w", err)
	}

	candidates := make([]models.Memory, len(texts))
	for i, text := range texts {
		candidates[i] = models.Memory{
			ID:        uuid.New().String(),
			Content:   text,
			Embedding: vectors[i],
			CreatedAt: time.Now(),
		}
	}

	matches := search.FindSimilar(queryVector, candidates, search.FindOptions{
		Threshold: similarThreshold,
		Limit:     similarLimit,
	})

	if len(matches) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No texts above %.2f similarity for query: %s\n", similarThreshold, query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tTEXT\n")
	fmt.Fprintf(w, "-----\t----\n")
	for _, match := range matches {
		fmt.Fprintf(w, "%.3f\t%s\n", match.Similarity, truncate(match.Content, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(matches))
	}
	return nil
}
