package model

import "time"

// FetchResult represents one successfully fetched page after normalization.
// It is produced once per successful fetch and never mutated afterwards;
// the caller that issued the fetch owns the value.
//
// Design decision: We keep both the raw markup and the normalized text
// because:
//  1. Raw markup is needed for archiving and later re-analysis
//  2. Normalized text is what the extractor operates on
//  3. Recomputing either from the other is lossy or expensive
type FetchResult struct {
	// URL is the full URL of the fetched page including the .onion host.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// RawMarkup is the response body, truncated to the configured
	// maximum content length if the origin sent more.
	RawMarkup string `json:"-"` // Excluded from JSON; archived separately

	// NormalizedText is the visible text of the page with tags removed
	// and whitespace collapsed to single spaces.
	NormalizedText string `json:"normalized_text,omitempty"`

	// Title is the page title from the first <title> element.
	// Empty if the document has no title.
	Title string `json:"title,omitempty"`

	// OutboundLinks are the anchor targets of the page resolved to
	// absolute URLs against the page URL.
	OutboundLinks []string `json:"outbound_links,omitempty"`

	// ResponseHeaders holds the response headers, first value per name.
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`

	// FetchedAt is the time the response was received.
	FetchedAt time.Time `json:"fetched_at"`

	// ByteLength is the length of RawMarkup in bytes (after truncation).
	ByteLength int `json:"byte_length"`
}

// Header returns the named response header or the empty string.
// Header names are stored in Go's canonical form.
func (r *FetchResult) Header(name string) string {
	return r.ResponseHeaders[name]
}
