package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/onionwatch/internal/alert"
	"github.com/nao1215/onionwatch/internal/config"
	"github.com/nao1215/onionwatch/internal/crawler"
	"github.com/nao1215/onionwatch/internal/extractor"
	"github.com/nao1215/onionwatch/internal/log"
	"github.com/nao1215/onionwatch/internal/model"
	"github.com/nao1215/onionwatch/internal/monitor"
	"github.com/nao1215/onionwatch/internal/report"
	"github.com/nao1215/onionwatch/internal/storage"
	"github.com/nao1215/onionwatch/internal/tor"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single monitoring pass over configured seeds",
		Long: `Scan crawls each configured onion seed breadth-first through the Tor
proxy, matches page text against the configured keywords, extracts
structured entities, and persists the findings.

Examples:
  # Scan seeds and keywords from list files
  onionwatch scan --seeds seeds.txt --keywords keywords.txt

  # Scan a single seed with inline keywords
  onionwatch scan -s http://exampleonionaddr.onion -k bitcoin -k leak

  # Crawl seeds in parallel and print a Markdown summary
  onionwatch scan --concurrent --markdown

  # Use a non-default Tor proxy
  onionwatch scan --proxy 127.0.0.1:9150`,
		RunE: runScanCmd,
	}

	addScanFlags(cmd)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path instead of stdout")

	return cmd
}

// addScanFlags registers the flags shared by scan and watch.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("proxy", "x", config.DefaultProxyAddress,
		"Tor SOCKS5 proxy address (host:port)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Base politeness delay between requests (jittered)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPagesPerSite,
		"Maximum pages to crawl per seed")
	cmd.Flags().IntP("max-concurrent", "n", config.DefaultMaxConcurrentRequests,
		"Maximum parallel fetches in concurrent mode")
	cmd.Flags().Bool("concurrent", false,
		"Crawl seeds and pages in parallel")
	cmd.Flags().Bool("no-entities", false,
		"Disable entity extraction (keyword matching only)")
	cmd.Flags().Bool("archive", false,
		"Archive raw page markup for later re-analysis")
	cmd.Flags().StringArrayP("seed", "s", nil,
		"Seed onion URL to crawl (repeatable)")
	cmd.Flags().StringArrayP("keyword", "k", nil,
		"Keyword to match (repeatable)")
	cmd.Flags().String("seeds", "",
		"Path to newline-delimited seed URL file")
	cmd.Flags().String("keywords", "",
		"Path to newline-delimited keyword file")
	cmd.Flags().String("webhook", "",
		"Webhook URL for match alerts")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .onionwatch.yaml in current dir, XDG config dir, or home)")
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	scanner, store, cleanup, err := buildScanner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	findings, err := scanner.ScanOnce(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}

	return outputSummary(cmd, store, findings)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// buildConfig assembles a Config from defaults, the config file,
// environment variables, and CLI flags (in increasing precedence).
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Explicitly specified config files must exist; the default search
	// locations are optional.
	found := config.FindConfigFile(configPath)
	if found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		file.Apply(cfg)
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg.ApplyEnv()

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.ResolveLists(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlags overrides config values with flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("proxy") {
		v, err := flags.GetString("proxy")
		if err != nil {
			return err
		}
		cfg.ProxyAddress = v
	}
	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.RequestTimeout = v
	}
	if flags.Changed("delay") {
		v, err := flags.GetDuration("delay")
		if err != nil {
			return err
		}
		cfg.RequestDelay = v
	}
	if flags.Changed("max-pages") {
		v, err := flags.GetInt("max-pages")
		if err != nil {
			return err
		}
		cfg.MaxPagesPerSite = v
	}
	if flags.Changed("max-concurrent") {
		v, err := flags.GetInt("max-concurrent")
		if err != nil {
			return err
		}
		cfg.MaxConcurrentRequests = v
	}
	if flags.Changed("concurrent") {
		v, err := flags.GetBool("concurrent")
		if err != nil {
			return err
		}
		cfg.Concurrent = v
	}
	if flags.Changed("no-entities") {
		v, err := flags.GetBool("no-entities")
		if err != nil {
			return err
		}
		cfg.ExtractEntities = !v
	}
	if flags.Changed("archive") {
		v, err := flags.GetBool("archive")
		if err != nil {
			return err
		}
		cfg.ArchiveRawContent = v
	}
	if flags.Changed("webhook") {
		v, err := flags.GetString("webhook")
		if err != nil {
			return err
		}
		cfg.WebhookURL = v
	}

	seeds, err := flags.GetStringArray("seed")
	if err != nil {
		return err
	}
	cfg.Seeds = append(cfg.Seeds, seeds...)

	keywords, err := flags.GetStringArray("keyword")
	if err != nil {
		return err
	}
	cfg.Keywords = append(cfg.Keywords, keywords...)

	if flags.Changed("seeds") {
		v, err := flags.GetString("seeds")
		if err != nil {
			return err
		}
		cfg.SeedsFile = v
	}
	if flags.Changed("keywords") {
		v, err := flags.GetString("keywords")
		if err != nil {
			return err
		}
		cfg.KeywordsFile = v
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildScanner wires the full pipeline from the config: Tor client,
// crawler, extractor, storage, archive, and notifiers. The returned
// cleanup function closes the store.
func buildScanner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*monitor.Scanner, *storage.FindingStore, func(), error) {
	torClient, err := tor.NewClient(cfg.ProxyAddress, cfg.RequestTimeout)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := torClient.CheckConnection(ctx); status != tor.ProxyStatusOK {
		return nil, nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
			status, cfg.ProxyAddress)
	}
	logger.Info("Tor proxy connection verified", "address", cfg.ProxyAddress)

	clientOpts := []crawler.Option{
		crawler.WithDelay(cfg.RequestDelay),
		crawler.WithMinContentLength(cfg.MinContentLength),
		crawler.WithMaxContentLength(cfg.MaxContentLength),
		crawler.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, crawler.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RateLimitRequests > 0 {
		clientOpts = append(clientOpts,
			crawler.WithRateLimiter(crawler.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)))
	}

	httpClient := torClient.NewHTTPClient()
	fetchClient := crawler.NewConcurrentClient(httpClient, cfg.MaxConcurrentRequests, clientOpts...)

	controllerOpts := []crawler.ControllerOption{
		crawler.WithMaxPages(cfg.MaxPagesPerSite),
		crawler.WithControllerLogger(logger),
	}
	if cfg.Concurrent {
		controllerOpts = append(controllerOpts, crawler.WithBatchFetcher(fetchClient))
	}
	controller := crawler.NewController(fetchClient, controllerOpts...)

	ext, err := extractor.New(cfg.Keywords, extractor.Options{
		DisableEntities: !cfg.ExtractEntities,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to compile keywords: %w", err)
	}

	store, err := storage.Open(cfg.DBDir, storage.DefaultOptions())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}
	logger.Info("database opened", "path", store.Path())

	scannerOpts := []monitor.ScannerOption{
		monitor.WithStore(store),
		monitor.WithLogger(logger),
	}
	if cfg.Concurrent {
		scannerOpts = append(scannerOpts, monitor.WithConcurrentCrawl())
	}
	if cfg.ArchiveRawContent {
		archive, err := storage.NewArchive(cfg.ArchiveDir)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		scannerOpts = append(scannerOpts, monitor.WithArchive(archive))
	}
	if notifier, err := buildNotifier(cfg); err != nil {
		cleanup()
		return nil, nil, nil, err
	} else if notifier != nil {
		scannerOpts = append(scannerOpts, monitor.WithNotifier(notifier))
	}

	scanner := monitor.NewScanner(controller, ext, cfg.Seeds, scannerOpts...)
	return scanner, store, cleanup, nil
}

// buildNotifier assembles the alert fan-out from the config. Returns
// nil when no alert channel is configured.
func buildNotifier(cfg *config.Config) (alert.Notifier, error) {
	var notifiers alert.Multi
	if cfg.AlertsDir != "" {
		fn, err := alert.NewFileNotifier(cfg.AlertsDir)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, fn)
	}
	if cfg.WebhookURL != "" {
		// Webhook endpoints are clearnet services; they use the
		// default transport, not the Tor proxy.
		notifiers = append(notifiers, alert.NewWebhookNotifier(cfg.WebhookURL, nil))
	}
	if len(notifiers) == 0 {
		return nil, nil
	}
	return notifiers, nil
}

// outputSummary aggregates findings and writes the summary in the
// requested format.
func outputSummary(cmd *cobra.Command, store *storage.FindingStore, findings []*model.Finding) error {
	summary := buildSummary(context.Background(), store, findings)

	out := cmd.OutOrStdout()
	outputPath, err := cmd.Flags().GetString("output")
	if err == nil && outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // flushed by writers below
		out = f
	}

	jsonOut, _ := cmd.Flags().GetBool("json")         //nolint:errcheck // flag registered above
	markdownOut, _ := cmd.Flags().GetBool("markdown") //nolint:errcheck // flag registered above
	if jsonOut && markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}

	var w report.Writer
	switch {
	case jsonOut:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewTextWriter(out)
	}

	_, err = w.Write(summary)
	return err
}

// buildSummary assembles a report summary from this pass's findings
// and the store's recency buckets.
func buildSummary(ctx context.Context, store *storage.FindingStore, findings []*model.Finding) *report.Summary {
	summary := &report.Summary{
		GeneratedAt: time.Now(),
		Stats:       extractor.Aggregate(findings),
	}

	for _, f := range findings {
		if f.HasMatches {
			summary.Matched = append(summary.Matched, f)
		}
	}

	if store != nil {
		if buckets, err := store.RecentActivity(ctx); err == nil {
			summary.Recency = buckets
		}
	}
	return summary
}
