// ABOUTME: Main entry point for the Engram CLI
// ABOUTME: Sets up Cobra root command and executes CLI
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mbrook/engram/cmd/engram/commands"
	"github.com/mbrook/engram/internal/aierr"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set version info for commands
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		var aiErr *aierr.Error
		if errors.As(err, &aiErr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", aierr.UserMessage(aiErr.Code))
			if os.Getenv("ENGRAM_DEBUG") != "" {
				fmt.Fprintf(os.Stderr, "%s\n", aierr.SupportInfo(err))
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
