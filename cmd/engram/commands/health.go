// ABOUTME: CLI command to run a one-shot health check on the selected provider
// ABOUTME: Prints the monitor classification and raw provider health
package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbrook/engram/internal/health"
)

// NewHealthCmd creates the health command
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check provider health",
		Long: `Run a one-shot health check on the selected provider and
print the classification.

Examples:
  engram health
  engram health --format json`,
		RunE: runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	monitor := health.NewMonitor(health.MonitorOptions{
		FailureThreshold: rt.cfg.FailureThreshold,
		HistorySize:      rt.cfg.HistoryWindow,
	})
	monitor.Start(rt.prov, rt.cfg.HealthInterval)
	defer monitor.Stop()

	status := monitor.CheckNow()
	raw := rt.prov.HealthCheck(ctx)

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"monitor":  status,
			"provider": raw,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Provider: %s\n", status.ProviderName)
	fmt.Fprintf(cmd.OutOrStdout(), "Status:   %s\n", status.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "Uptime:   %.1f%%\n", status.UptimePercent)
	fmt.Fprintf(cmd.OutOrStdout(), "Checked:  %s\n", status.LastCheck.Format(time.RFC3339))
	if raw.Message != "" && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Detail:   %s\n", raw.Message)
	}
	return nil
}
