package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/onionwatch/internal/model"
)

// DefaultConcurrency is the default parallel fetch limit.
// Kept deliberately small: each in-flight request occupies a Tor
// circuit, and hammering a hidden service defeats the politeness delay.
const DefaultConcurrency = 3

// ConcurrentClient fetches batches of pages with bounded parallelism.
//
// It embeds Client, so it satisfies Fetcher for single pages and adds
// FetchBatch on top. All fetches in a batch share the embedded client's
// rate limiter and politeness jitter; the concurrency bound caps how
// many are in flight at once.
type ConcurrentClient struct {
	*Client
	concurrency int
}

// NewConcurrentClient creates a batch-capable client. A concurrency of
// zero or less falls back to DefaultConcurrency.
func NewConcurrentClient(httpClient *http.Client, concurrency int, opts ...Option) *ConcurrentClient {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &ConcurrentClient{
		Client:      NewClient(httpClient, opts...),
		concurrency: concurrency,
	}
}

// FetchBatch fetches the given URLs with at most the configured number
// in flight. Failed fetches are logged and excluded from the result;
// one page failing never aborts its siblings. Results are in completion
// order. Context cancellation stops dispatching new fetches and returns
// whatever completed before the cancellation.
func (c *ConcurrentClient) FetchBatch(ctx context.Context, rawURLs []string) []*model.FetchResult {
	var (
		mu      sync.Mutex
		results []*model.FetchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, rawURL := range rawURLs {
		g.Go(func() error {
			res, err := c.Fetch(gctx, rawURL)
			if err != nil {
				if gctx.Err() != nil {
					// Cancel the rest of the batch.
					return gctx.Err()
				}
				logFetchFailure(c.logger, rawURL, err)
				return nil
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	// The only error an entry returns is the context's; partial
	// results are still valid in that case.
	_ = g.Wait() //nolint:errcheck

	return results
}

// Concurrency returns the parallel fetch limit.
func (c *ConcurrentClient) Concurrency() int {
	return c.concurrency
}

// logFetchFailure logs a per-page failure at a level matching its
// severity. Short pages are routine and stay at debug.
func logFetchFailure(logger *slog.Logger, rawURL string, err error) {
	reason, ok := ReasonOf(err)
	if !ok {
		logger.Warn("fetch failed", "url", rawURL, "error", err)
		return
	}

	switch reason {
	case FailureContentTooShort:
		logger.Debug("skipping page", "url", rawURL, "reason", reason.String())
	case FailureTimeout:
		logger.Info("fetch timed out", "url", rawURL)
	default:
		logger.Warn("fetch failed", "url", rawURL, "reason", reason.String(), "error", err)
	}
}
