// ABOUTME: CLI commands for embedding cache inspection and maintenance
// ABOUTME: Provides cache stats and cache clear over the two-tier cache
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mbrook/engram/internal/config"
)

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the embedding cache",
		Long: `Inspect and maintain the two-tier embedding cache.

Examples:
  engram cache stats
  engram cache clear`,
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			embCache, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer embCache.Close()

			stats, err := embCache.GetStats()
			if err != nil {
				return fmt.Errorf("reading cache stats: %w", err)
			}

			if outputFormat == "json" {
				jsonData, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling JSON: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Entries:   %d\n", stats.Size)
			if stats.OldestEntry != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Oldest:    %s\n", formatTime(*stats.OldestEntry))
			}
			if stats.NewestEntry != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Newest:    %s\n", formatTime(*stats.NewestEntry))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Est. size: %d bytes\n", stats.MemoryUsageEstimate)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear both cache tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			embCache, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer embCache.Close()

			if err := embCache.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared\n")
			}
			return nil
		},
	}
}
