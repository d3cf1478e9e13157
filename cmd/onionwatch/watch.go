package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/onionwatch/internal/config"
	"github.com/nao1215/onionwatch/internal/log"
	"github.com/nao1215/onionwatch/internal/monitor"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously monitor seeds on a fixed interval",
		Long: `Watch runs scan passes repeatedly until interrupted. The first pass
starts immediately; subsequent passes wait the configured interval.
Findings accumulate in the database across passes, and alerts fire for
every pass's matches.

Examples:
  # Scan every hour (default)
  onionwatch watch --seeds seeds.txt --keywords keywords.txt

  # Scan every 15 minutes with webhook alerts
  onionwatch watch -i 15m --webhook https://example.com/hook

  # Stop with Ctrl+C; an in-progress pass finishes saving what it fetched`,
		RunE: runWatchCmd,
	}

	addScanFlags(cmd)
	cmd.Flags().DurationP("interval", "i", config.DefaultScanInterval,
		"Pause between monitoring passes")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		interval, err := cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}
		cfg.ScanInterval = interval
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	scanner, _, cleanup, err := buildScanner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	m := monitor.NewMonitor(scanner, cfg.ScanInterval, logger)
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("monitoring stopped")
	return nil
}
