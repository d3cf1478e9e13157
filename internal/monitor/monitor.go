// Package monitor orchestrates the scan pipeline: crawl seeds, extract
// keywords and entities, persist findings, archive raw content, and
// fire alerts. It also provides the continuous monitoring loop.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/onionwatch/internal/alert"
	"github.com/nao1215/onionwatch/internal/crawler"
	"github.com/nao1215/onionwatch/internal/extractor"
	"github.com/nao1215/onionwatch/internal/model"
	"github.com/nao1215/onionwatch/internal/storage"
)

// Scanner runs one complete scan pass over the configured seeds.
//
// Storage, archive, and notifier are optional: a nil store makes the
// pass ephemeral (findings only returned), a nil archive skips raw
// markup retention, and a nil notifier disables alerting. The crawl
// and extraction stages always run.
type Scanner struct {
	controller *crawler.Controller
	extractor  *extractor.Extractor
	store      *storage.FindingStore
	archive    *storage.Archive
	notifier   alert.Notifier
	seeds      []string
	concurrent bool
	logger     *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithStore enables finding persistence.
func WithStore(store *storage.FindingStore) ScannerOption {
	return func(s *Scanner) {
		s.store = store
	}
}

// WithArchive enables raw markup archiving.
func WithArchive(archive *storage.Archive) ScannerOption {
	return func(s *Scanner) {
		s.archive = archive
	}
}

// WithNotifier enables alerting for matched findings.
func WithNotifier(notifier alert.Notifier) ScannerOption {
	return func(s *Scanner) {
		s.notifier = notifier
	}
}

// WithConcurrentCrawl crawls seeds in parallel instead of in order.
func WithConcurrentCrawl() ScannerOption {
	return func(s *Scanner) {
		s.concurrent = true
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a scanner over the given seeds.
func NewScanner(controller *crawler.Controller, ext *extractor.Extractor, seeds []string, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		controller: controller,
		extractor:  ext,
		seeds:      seeds,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanOnce runs a single pass: crawl every seed, extract from every
// fetched page, persist and archive, and alert on matches. It returns
// all findings from the pass, including those without matches.
//
// Persistence, archive, and alert failures are logged and skipped so
// one bad page or a down webhook never loses the rest of the pass.
// Context cancellation stops crawling but the pages already fetched
// are still extracted and persisted.
func (s *Scanner) ScanOnce(ctx context.Context) ([]*model.Finding, error) {
	start := time.Now()
	s.logger.Info("scan pass starting", "seeds", len(s.seeds))

	var (
		pages    []*model.FetchResult
		crawlErr error
	)
	if s.concurrent {
		pages, crawlErr = s.controller.CrawlSeedsConcurrent(ctx, s.seeds)
	} else {
		pages, crawlErr = s.controller.CrawlSeeds(ctx, s.seeds)
	}
	if crawlErr != nil {
		s.logger.Warn("crawl interrupted", "error", crawlErr, "pages", len(pages))
	}

	findings := make([]*model.Finding, 0, len(pages))
	for _, page := range pages {
		matches, entities := s.extractor.Extract(page.NormalizedText)
		finding := extractor.Assemble(page, matches, entities)
		findings = append(findings, finding)

		s.persist(page, finding)

		if finding.HasMatches && s.notifier != nil {
			// Alerts use a background context so a cancelled crawl
			// still delivers alerts for what it found.
			if err := s.notifier.Notify(context.WithoutCancel(ctx), finding); err != nil {
				s.logger.Warn("alert delivery failed", "url", finding.URL, "error", err)
			}
		}
	}

	matched := 0
	for _, f := range findings {
		if f.HasMatches {
			matched++
		}
	}
	s.logger.Info("scan pass complete",
		"pages", len(pages),
		"findings", len(findings),
		"matched", matched,
		"elapsed", time.Since(start).Round(time.Second).String())

	return findings, crawlErr
}

// persist saves a finding and archives the page's raw markup.
func (s *Scanner) persist(page *model.FetchResult, finding *model.Finding) {
	if s.store != nil {
		if _, err := s.store.SaveFinding(context.Background(), finding); err != nil {
			s.logger.Warn("failed to save finding", "url", finding.URL, "error", err)
		}
	}
	if s.archive != nil {
		if _, err := s.archive.Save(page); err != nil {
			s.logger.Warn("failed to archive page", "url", page.URL, "error", err)
		}
	}
}

// Monitor runs scan passes on a fixed interval until cancelled.
type Monitor struct {
	scanner  *Scanner
	interval time.Duration
	logger   *slog.Logger
}

// NewMonitor creates a monitor running a pass every interval.
func NewMonitor(scanner *Scanner, interval time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		scanner:  scanner,
		interval: interval,
		logger:   logger,
	}
}

// Run executes scan passes until the context is cancelled. The first
// pass starts immediately; subsequent passes wait the configured
// interval. The wait is chunked into one-second ticks so cancellation
// takes effect within a second even for hour-long intervals.
func (m *Monitor) Run(ctx context.Context) error {
	pass := 0
	for {
		pass++
		m.logger.Info("monitoring pass", "pass", pass, "interval", m.interval.String())

		if _, err := m.scanner.ScanOnce(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		if err := m.sleep(ctx); err != nil {
			return err
		}
	}
}

// sleep waits the monitoring interval in one-second increments,
// returning early when the context is cancelled.
func (m *Monitor) sleep(ctx context.Context) error {
	deadline := time.Now().Add(m.interval)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if !now.Before(deadline) {
				return nil
			}
		}
	}
}
