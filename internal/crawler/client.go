package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/onionwatch/internal/model"
)

// Default fetch parameters. These mirror the config defaults so a
// zero-option Client behaves sensibly in tests.
const (
	// DefaultDelay is the base politeness delay between requests.
	DefaultDelay = 5 * time.Second

	// DefaultMinContentLength is the minimum normalized text length
	// for a page to be considered useful.
	DefaultMinContentLength = 100

	// DefaultMaxContentLength is the byte cap on response bodies.
	// Larger bodies are truncated at this boundary, never rejected.
	DefaultMaxContentLength = 1 << 20 // 1 MiB

	// DefaultUserAgent mimics Tor Browser so the crawler's requests
	// blend in with regular onion-service traffic.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// Client fetches single pages with politeness controls applied.
//
// Each Fetch sleeps a jittered politeness delay, passes the shared rate
// limiter if one is configured, then issues the request through the
// injected HTTP client. The HTTP client is injected rather than built
// here so production wiring routes through the Tor SOCKS5 proxy while
// tests talk to a local httptest server directly.
type Client struct {
	httpClient       *http.Client
	delay            time.Duration
	minContentLength int
	maxContentLength int64
	userAgent        string
	limiter          *RateLimiter
	logger           *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDelay sets the base politeness delay. The actual sleep before
// each request is drawn uniformly from [0.5*delay, 1.5*delay] so the
// crawler does not produce a fixed-interval request signature. A zero
// delay disables the sleep entirely, which tests rely on.
func WithDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.delay = delay
	}
}

// WithMinContentLength sets the minimum normalized text length below
// which a page is dropped as too short.
func WithMinContentLength(n int) Option {
	return func(c *Client) {
		c.minContentLength = n
	}
}

// WithMaxContentLength sets the response body truncation boundary.
func WithMaxContentLength(n int64) Option {
	return func(c *Client) {
		c.maxContentLength = n
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimiter attaches a shared sliding-window limiter. Concurrent
// fetchers built from the same Client share the same admission gate.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a fetch client around the given HTTP client.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		httpClient:       httpClient,
		delay:            DefaultDelay,
		minContentLength: DefaultMinContentLength,
		maxContentLength: DefaultMaxContentLength,
		userAgent:        DefaultUserAgent,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves one page, normalizes it, and returns the result.
//
// Per-page failures are returned as *FetchError. Context cancellation
// is returned as the bare context error so callers can distinguish
// "this page failed" from "stop crawling".
func (c *Client) Fetch(ctx context.Context, rawURL string) (*model.FetchResult, error) {
	if err := c.politenessSleep(ctx); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: FailureConnection, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{URL: rawURL, Reason: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: rawURL, Reason: FailureBadStatus, StatusCode: resp.StatusCode}
	}

	// Truncate rather than reject oversized bodies: the leading bytes
	// of a huge page are still worth extracting from.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxContentLength))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{URL: rawURL, Reason: classifyTransportError(err), Err: err}
	}

	normalized, err := Normalize(string(body), rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: FailureConnection, Err: err}
	}

	if len(normalized.Text) < c.minContentLength {
		c.logger.Debug("dropping short page",
			"url", rawURL,
			"length", len(normalized.Text),
			"minimum", c.minContentLength)
		return nil, &FetchError{URL: rawURL, Reason: FailureContentTooShort}
	}

	return &model.FetchResult{
		URL:             rawURL,
		StatusCode:      resp.StatusCode,
		RawMarkup:       string(body),
		NormalizedText:  normalized.Text,
		Title:           normalized.Title,
		OutboundLinks:   normalized.Links,
		ResponseHeaders: firstHeaderValues(resp.Header),
		FetchedAt:       time.Now().UTC(),
		ByteLength:      len(body),
	}, nil
}

// politenessSleep waits a jittered delay before the request, honoring
// context cancellation during the wait.
func (c *Client) politenessSleep(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}

	// Uniform in [0.5*delay, 1.5*delay].
	jittered := c.delay/2 + time.Duration(rand.Float64()*float64(c.delay))

	timer := time.NewTimer(jittered)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classifyTransportError maps a transport-level error to a failure
// reason. Timeouts are common over Tor and logged differently from
// hard connection failures.
func classifyTransportError(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureConnection
}

// firstHeaderValues flattens response headers to their first values.
// Repeated headers beyond the first carry no signal for archival.
func firstHeaderValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}
