package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for OnionWatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onionwatch",
		Short: "Keyword and entity monitoring for Tor hidden services",
		Long: `OnionWatch crawls Tor hidden services (.onion addresses), matches page
content against configured keywords, and extracts structured entities
such as email addresses, cryptocurrency addresses, and leaked
credentials.

All network traffic routes through a local Tor SOCKS5 proxy. OnionWatch
never runs a Tor daemon itself; point it at an existing one (default
127.0.0.1:9050).`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
