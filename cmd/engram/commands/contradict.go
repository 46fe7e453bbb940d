// ABOUTME: CLI command to check a statement against existing statements
// ABOUTME: Runs the similarity prefilter then asks the chat model for verdicts
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
	contradictThreshold float64
)

// NewContradictCmd creates the contradict command
func NewContradictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contradict <statement> <existing>...",
		Short: "Detect contradictions against existing statements",
		Long: `Check whether a statement contradicts any of the existing
statements.

Only statements above the similarity threshold are sent to the
chat model for judgment; the rest are skipped without a model
call.

Examples:
  engram contradict "I love coffee" "I hate coffee" "tax season"
  engram contradict --threshold 0.5 "cats are great" "I dislike cats"`,
		Args: cobra.MinimumNArgs(2),
		RunE: runContradict,
	}

	cmd.Flags().Float64Var(&contradictThreshold, "threshold", search.DefaultThreshold, "Similarity prefilter threshold")

	return cmd
}

func runContradict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.prov.Capabilities().Chat {
		return fmt.Errorf("provider %s does not support chat, cannot judge contradictions", rt.prov.Name())
	}

	statement := args[0]
	existingTexts := args[1:]

	statementID := uuid.New().String()
	statementVector, err := rt.engine.Generate(ctx, statement, embedding.Options{})
	if err != nil {
		return fmt.Errorf("embedding statement: %w", err)
	}

	vectors, err := rt.engine.GenerateBatch(ctx, existingTexts)
	if err != nil {
		return fmt.Errorf("embedding existing statements: %w", err)
	}

	contentByID := make(map[string]string, len(existingTexts))
	existing := make([]models.Memory, len(existingTexts))
	for i, text := range existingTexts {
		id := uuid.New().String()
		contentByID[id] = text
		existing[i] = models.Memory{
			ID:        id,
			Content:   text,
			Embedding: vectors[i],
			CreatedAt: time.Now(),
		}
	}

	detector := search.NewDetector(rt.prov, contradictThreshold)
	verdicts, err := detector.DetectContradictions(ctx, statementID, statement, statementVector, existing)
	if err != nil {
		return fmt.Errorf("detecting contradictions: %w", err)
	}

	if len(verdicts) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No contradictions found\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(verdicts, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CONFIDENCE\tSTATEMENT\tEXPLANATION\n")
	fmt.Fprintf(w, "----------\t---------\t-----------\n")
	for _, v := range verdicts {
		fmt.Fprintf(w, "%d%%\t%s\t%s\n",
			v.Confidence,
			truncate(contentByID[v.Memory2ID], 40),
			truncate(v.Explanation, 50))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d contradiction(s)\n", len(verdicts))
	}
	return nil
}
