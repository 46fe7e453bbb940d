// ABOUTME: CLI command to list registered providers and their availability
// ABOUTME: Shows type, API key requirement, and live health per provider
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mbrook/engram/internal/config"
)

// NewProvidersCmd creates the providers command
func NewProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered AI providers",
		Long: `List registered AI providers with their availability.

Availability is probed live, so a provider with a bad API key or
an unreachable endpoint shows as unavailable.

Examples:
  engram providers
  engram providers --format json`,
		RunE: runProviders,
	}
}

func runProviders(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := cmd.Context()
	registry := newRegistry(cfg)
	availability := registry.CheckAvailability(ctx)

	if outputFormat == "json" {
		entries := make([]map[string]interface{}, 0, len(registry.Names()))
		for _, name := range registry.Names() {
			p, _ := registry.Get(name)
			entries = append(entries, map[string]interface{}{
				"name":             name,
				"type":             p.Type(),
				"requires_api_key": p.RequiresAPIKey(),
				"available":        availability[name],
			})
		}
		jsonData, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tTYPE\tAPI KEY\tAVAILABLE\n")
	fmt.Fprintf(w, "----\t----\t-------\t---------\n")
	for _, name := range registry.Names() {
		p, _ := registry.Get(name)
		keyStr := "no"
		if p.RequiresAPIKey() {
			keyStr = "yes"
		}
		availStr := "no"
		if availability[name] {
			availStr = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Type(), keyStr, availStr)
	}
	w.Flush()

	if !quiet && cfg.PreferredProvider != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nPreferred: %s\n", cfg.PreferredProvider)
	}
	return nil
}
