package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/onionwatch/internal/model"
)

// FailureReason classifies why a single fetch failed.
// The classification feeds log output and skip decisions; the crawl
// itself never aborts on any of these.
type FailureReason int

const (
	// FailureTimeout indicates the request exceeded its timeout.
	// Common over Tor, where circuit latency can exceed tens of seconds.
	FailureTimeout FailureReason = iota

	// FailureConnection indicates the connection could not be
	// established or died mid-transfer (refused, reset, DNS through
	// the proxy failed, body read error).
	FailureConnection

	// FailureBadStatus indicates the server responded with a
	// non-success HTTP status code (anything outside 200-299).
	FailureBadStatus

	// FailureContentTooShort indicates the page fetched successfully
	// but its normalized text was below the minimum useful length.
	// These pages are dropped silently at debug level: login walls and
	// placeholder pages are routine on onion services and not worth
	// alerting on.
	FailureContentTooShort
)

// String returns a short tag for the failure reason, suitable for logs.
func (r FailureReason) String() string {
	switch r {
	case FailureTimeout:
		return "timeout"
	case FailureConnection:
		return "connection"
	case FailureBadStatus:
		return "bad_status"
	case FailureContentTooShort:
		return "content_too_short"
	default:
		return "unknown"
	}
}

// FetchError is the typed failure result of a single fetch attempt.
// Callers inspect Reason rather than matching error strings.
type FetchError struct {
	// URL is the URL whose fetch failed.
	URL string

	// Reason classifies the failure.
	Reason FailureReason

	// StatusCode is set only when Reason is FailureBadStatus.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Reason {
	case FailureBadStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
		}
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
	}
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from an error, if it carries one.
func ReasonOf(err error) (FailureReason, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason, true
	}
	return 0, false
}

// Fetcher fetches a single page and returns its normalized result.
//
// Implementations return *FetchError for per-page failures and the bare
// context error when the caller's context is done; the distinction lets
// traversal code skip the former and stop on the latter.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.FetchResult, error)
}

// BatchFetcher fetches a set of pages with bounded parallelism.
// Failed fetches are excluded from the returned slice; the slice order
// follows completion order, not input order.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, rawURLs []string) []*model.FetchResult
}
