package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/onionwatch/internal/config"
	"github.com/nao1215/onionwatch/internal/extractor"
	"github.com/nao1215/onionwatch/internal/model"
	"github.com/nao1215/onionwatch/internal/report"
	"github.com/nao1215/onionwatch/internal/storage"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored findings without crawling",
		Long: `Stats loads the findings database and prints aggregate statistics:
keyword frequency, entity counts, and recent activity buckets. No
network access is performed.

Examples:
  # Plain text summary of all stored findings
  onionwatch stats

  # JSON summary of findings from the last 24 hours
  onionwatch stats --json --since 24h`,
		RunE: runStatsCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.Flags().Duration("since", 0,
		"Only include findings observed within this duration (0 = all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	since, err := cmd.Flags().GetDuration("since")
	if err != nil {
		return err
	}

	// Read-only view: a missing database means there is nothing to
	// summarize, which deserves a clear message rather than an empty
	// report over a freshly created file.
	store, err := storage.Open(dbDir, storage.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no findings database (run a scan first): %w", err)
	}
	defer store.Close() //nolint:errcheck // read-only session

	ctx := context.Background()
	var findings []*model.Finding
	if since > 0 {
		findings, err = store.FindingsSince(ctx, since)
	} else {
		findings, err = store.LoadFindings(ctx)
	}
	if err != nil {
		return err
	}

	summary := &report.Summary{
		GeneratedAt: time.Now(),
		Stats:       extractor.Aggregate(findings),
	}
	for _, f := range findings {
		if f.HasMatches {
			summary.Matched = append(summary.Matched, f)
		}
	}
	if buckets, err := store.RecentActivity(ctx); err == nil {
		summary.Recency = buckets
	}

	jsonOut, _ := cmd.Flags().GetBool("json")         //nolint:errcheck // flag registered above
	markdownOut, _ := cmd.Flags().GetBool("markdown") //nolint:errcheck // flag registered above
	if jsonOut && markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}

	var w report.Writer
	switch {
	case jsonOut:
		w = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	case markdownOut:
		w = report.NewMarkdownWriter(cmd.OutOrStdout())
	default:
		w = report.NewTextWriter(cmd.OutOrStdout())
	}

	_, err = w.Write(summary)
	return err
}
