package config

import "errors"

// Configuration validation errors.
//
// Design decision: We define specific sentinel errors rather than
// formatted strings so the CLI can test for them and print targeted
// remediation hints.
var (
	// ErrNoSeeds is returned when no seed URLs are configured.
	ErrNoSeeds = errors.New("no seed URLs configured")

	// ErrNoKeywords is returned when no keywords are configured.
	ErrNoKeywords = errors.New("no keywords configured")

	// ErrInvalidTimeout is returned when the request timeout is zero or negative.
	ErrInvalidTimeout = errors.New("request timeout must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	ErrInvalidDelay = errors.New("request delay must be non-negative")

	// ErrInvalidMaxPages is returned when the per-site page cap is not positive.
	ErrInvalidMaxPages = errors.New("max pages per site must be positive")

	// ErrInvalidConcurrency is returned when the concurrent request limit is not positive.
	ErrInvalidConcurrency = errors.New("max concurrent requests must be positive")

	// ErrInvalidContentLength is returned when content length bounds are
	// negative or inverted.
	ErrInvalidContentLength = errors.New("invalid content length bounds")

	// ErrInvalidScanInterval is returned when the monitoring interval is not positive.
	ErrInvalidScanInterval = errors.New("scan interval must be positive")
)
