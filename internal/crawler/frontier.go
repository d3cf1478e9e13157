package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/onionwatch/internal/model"
	"github.com/nao1215/onionwatch/internal/tor"
)

// DefaultMaxPages is the per-site page cap. Onion sites are slow to
// crawl; a small cap keeps a single seed from monopolizing a scan pass.
const DefaultMaxPages = 10

// frontier tracks one seed's traversal state: which URLs were fetched,
// which are queued, and how many pages succeeded.
//
// The page counter increments only on successful fetches, so failures
// never consume budget. Seen-tracking covers both fetched and queued
// URLs, so a URL discovered twice is enqueued once.
type frontier struct {
	seedHost  string
	seen      map[string]bool
	pending   []string
	pageCount int
}

// newFrontier creates a frontier rooted at the given seed URL.
func newFrontier(seed *url.URL) *frontier {
	f := &frontier{
		seedHost: strings.ToLower(seed.Hostname()),
		seen:     make(map[string]bool),
	}
	f.enqueue(seed.String())
	return f
}

// enqueue adds a URL to the pending queue if it belongs to the seed's
// site and has not been seen. It reports whether the URL was added.
//
// Same-host scoping is the only admission rule applied to discovered
// links: the seed itself already passed onion validation, and every
// same-host link inherits that property.
func (f *frontier) enqueue(rawURL string) bool {
	canonical, ok := canonicalizeURL(rawURL)
	if !ok {
		return false
	}

	u, err := url.Parse(canonical)
	if err != nil || strings.ToLower(u.Hostname()) != f.seedHost {
		return false
	}

	if f.seen[canonical] {
		return false
	}

	f.seen[canonical] = true
	f.pending = append(f.pending, canonical)
	return true
}

// dequeue pops the oldest pending URL, preserving FIFO breadth-first
// order.
func (f *frontier) dequeue() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}
	u := f.pending[0]
	f.pending = f.pending[1:]
	return u, true
}

// drain pops up to n pending URLs at once, for level-order batching.
func (f *frontier) drain(n int) []string {
	if n <= 0 || len(f.pending) == 0 {
		return nil
	}
	if n > len(f.pending) {
		n = len(f.pending)
	}
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return batch
}

// canonicalizeURL normalizes a URL for dedup: lowercased scheme and
// host, fragment stripped, empty path replaced with "/". Two spellings
// of the same page must collapse to one frontier entry.
func canonicalizeURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}

// Controller drives breadth-first traversal over seed sites.
//
// A Controller holds no per-crawl state; each CrawlSite call builds its
// own frontier, so one Controller serves concurrent seed crawls.
type Controller struct {
	fetcher  Fetcher
	batch    BatchFetcher
	maxPages int
	logger   *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMaxPages sets the per-site successful page cap.
func WithMaxPages(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithBatchFetcher enables level-order batched crawling. Without it,
// CrawlSiteConcurrent falls back to sequential traversal.
func WithBatchFetcher(b BatchFetcher) ControllerOption {
	return func(c *Controller) {
		c.batch = b
	}
}

// WithControllerLogger sets the structured logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a traversal controller around a fetcher.
func NewController(fetcher Fetcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CrawlSite crawls one seed breadth-first until the page cap is reached
// or the frontier empties. Individual fetch failures are logged and
// skipped; only context cancellation stops the traversal early, and
// even then the pages fetched so far are returned.
func (c *Controller) CrawlSite(ctx context.Context, seedURL string) ([]*model.FetchResult, error) {
	seed, err := c.admitSeed(seedURL)
	if err != nil {
		return nil, err
	}

	f := newFrontier(seed)
	var results []*model.FetchResult

	for f.pageCount < c.maxPages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		rawURL, ok := f.dequeue()
		if !ok {
			break
		}

		res, err := c.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			logFetchFailure(c.logger, rawURL, err)
			continue
		}

		results = append(results, res)
		f.pageCount++
		c.logger.Debug("fetched page",
			"url", rawURL,
			"pages", f.pageCount,
			"pending", len(f.pending))

		for _, link := range res.OutboundLinks {
			f.enqueue(link)
		}
	}

	c.logger.Info("site crawl complete",
		"seed", seedURL,
		"pages", f.pageCount,
		"discovered", len(f.seen))
	return results, nil
}

// CrawlSiteConcurrent crawls one seed in level-order batches: the
// frontier is drained up to the remaining page budget, the batch is
// fetched in parallel, and links from the whole level feed the next
// batch. Requires a batch fetcher; without one it degrades to the
// sequential traversal.
//
// A failed fetch inside a batch wastes none of the budget, but its
// frontier slot is not refilled within the same level, so a level with
// failures may fetch fewer pages than the cap allows. The next level
// picks up the slack.
func (c *Controller) CrawlSiteConcurrent(ctx context.Context, seedURL string) ([]*model.FetchResult, error) {
	if c.batch == nil {
		return c.CrawlSite(ctx, seedURL)
	}

	seed, err := c.admitSeed(seedURL)
	if err != nil {
		return nil, err
	}

	f := newFrontier(seed)
	var results []*model.FetchResult

	for f.pageCount < c.maxPages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		level := f.drain(c.maxPages - f.pageCount)
		if len(level) == 0 {
			break
		}

		for _, res := range c.batch.FetchBatch(ctx, level) {
			results = append(results, res)
			f.pageCount++
			for _, link := range res.OutboundLinks {
				f.enqueue(link)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	c.logger.Info("site crawl complete",
		"seed", seedURL,
		"pages", f.pageCount,
		"discovered", len(f.seen))
	return results, nil
}

// CrawlSeeds crawls each seed in order. Invalid seeds are logged and
// skipped. Results from all seeds are concatenated; cancellation
// returns the partial set with the context error.
func (c *Controller) CrawlSeeds(ctx context.Context, seedURLs []string) ([]*model.FetchResult, error) {
	var all []*model.FetchResult
	for _, seedURL := range seedURLs {
		results, err := c.CrawlSite(ctx, seedURL)
		all = append(all, results...)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			c.logger.Warn("skipping seed", "seed", seedURL, "error", err)
		}
	}
	return all, nil
}

// CrawlSeedsConcurrent crawls all seeds in parallel, one goroutine per
// seed. Per-seed parallelism and rate limiting come from the batch
// fetcher; crawling seeds concurrently is safe because every seed is a
// distinct site with its own frontier.
func (c *Controller) CrawlSeedsConcurrent(ctx context.Context, seedURLs []string) ([]*model.FetchResult, error) {
	var (
		mu  sync.Mutex
		all []*model.FetchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, seedURL := range seedURLs {
		g.Go(func() error {
			results, err := c.CrawlSiteConcurrent(gctx, seedURL)

			mu.Lock()
			all = append(all, results...)
			mu.Unlock()

			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("skipping seed", "seed", seedURL, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return all, err
	}
	return all, nil
}

// admitSeed validates a seed URL and flags suspect v3 checksums.
func (c *Controller) admitSeed(seedURL string) (*url.URL, error) {
	if err := tor.ValidateSeedURL(seedURL); err != nil {
		return nil, fmt.Errorf("seed %q: %w", seedURL, err)
	}

	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("seed %q: %w", seedURL, err)
	}

	host := strings.ToLower(u.Hostname())
	if len(strings.TrimSuffix(host, tor.OnionSuffix)) == tor.OnionV3Length && !tor.IsChecksumValidV3(host) {
		c.logger.Warn("seed has invalid v3 checksum, likely a typo", "seed", seedURL)
	}

	return u, nil
}
