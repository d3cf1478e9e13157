package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for the characteristics of the Tor network:
// slow circuits, fragile hidden services, and the need to keep the
// crawler's traffic indistinguishable from a patient human visitor.
const (
	// DefaultProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port. We use
	// 127.0.0.1 instead of localhost to avoid DNS resolution overhead.
	DefaultProxyAddress = "127.0.0.1:9050"

	// DefaultRequestTimeout is generous because Tor connections route
	// through multiple relays; a clearnet-style timeout would classify
	// most healthy onion services as dead.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultRequestDelay is the base politeness delay between
	// requests. The actual sleep is jittered around this value.
	DefaultRequestDelay = 5 * time.Second

	// DefaultMaxPagesPerSite caps breadth-first traversal per seed.
	// Onion sites are slow; a small cap keeps one seed from eating an
	// entire monitoring pass.
	DefaultMaxPagesPerSite = 10

	// DefaultMaxConcurrentRequests bounds parallel fetches. Each
	// in-flight request occupies a Tor circuit.
	DefaultMaxConcurrentRequests = 3

	// DefaultMaxContentLength is the response body truncation bound.
	DefaultMaxContentLength = 1 << 20 // 1 MiB

	// DefaultMinContentLength drops near-empty pages (login walls,
	// placeholders) before extraction.
	DefaultMinContentLength = 100

	// DefaultScanInterval is the pause between monitoring passes.
	DefaultScanInterval = 1 * time.Hour

	// DefaultRateLimitRequests and DefaultRateLimitWindow bound the
	// global request rate across all concurrent fetches.
	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "onionwatch"
)

// Environment variable names for sensitive overrides. Secrets belong
// in the environment, not in config files that end up in dotfile repos.
const (
	// EnvProxyAddress overrides the Tor proxy address.
	EnvProxyAddress = "ONIONWATCH_PROXY_ADDRESS"

	// EnvWebhookURL overrides the alert webhook URL.
	EnvWebhookURL = "ONIONWATCH_WEBHOOK_URL"
)

// Config holds all configuration options for OnionWatch.
// It is populated from defaults, then the YAML config file, then CLI
// flags and environment variables, and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested
// structs for simplicity. The number of options is manageable, and
// nesting would add complexity without significant benefit.
type Config struct {
	// ProxyAddress is the Tor SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// RequestTimeout is the timeout for each HTTP request.
	RequestTimeout time.Duration

	// RequestDelay is the base politeness delay between requests.
	RequestDelay time.Duration

	// MaxPagesPerSite caps successful page fetches per seed.
	MaxPagesPerSite int

	// MaxConcurrentRequests bounds parallel fetches in concurrent mode.
	MaxConcurrentRequests int

	// MaxContentLength truncates response bodies beyond this many bytes.
	MaxContentLength int64

	// MinContentLength drops pages whose normalized text is shorter.
	MinContentLength int

	// RateLimitRequests and RateLimitWindow configure the sliding
	// window limiter. Zero RateLimitRequests disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// ExtractEntities toggles entity extraction. Keyword matching
	// always runs.
	ExtractEntities bool

	// UserAgent overrides the User-Agent header. Empty uses the
	// crawler's Tor Browser default.
	UserAgent string

	// Seeds is the list of onion seed URLs to monitor.
	Seeds []string

	// Keywords is the list of keywords to match.
	Keywords []string

	// SeedsFile and KeywordsFile are newline-delimited list files.
	// Entries from files are appended to the inline lists.
	SeedsFile    string
	KeywordsFile string

	// DBDir is the directory holding the SQLite findings database.
	// Defaults to the XDG data directory.
	DBDir string

	// ArchiveRawContent enables archiving raw page markup to disk.
	ArchiveRawContent bool

	// ArchiveDir is where raw markup is archived.
	ArchiveDir string

	// AlertsDir is where file alerts are dropped. Empty disables
	// file alerts.
	AlertsDir string

	// WebhookURL receives alert POSTs. Empty disables the webhook.
	WebhookURL string

	// ScanInterval is the pause between monitoring passes.
	ScanInterval time.Duration

	// Concurrent enables parallel fetching within and across seeds.
	Concurrent bool

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ProxyAddress:          DefaultProxyAddress,
		RequestTimeout:        DefaultRequestTimeout,
		RequestDelay:          DefaultRequestDelay,
		MaxPagesPerSite:       DefaultMaxPagesPerSite,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		MaxContentLength:      DefaultMaxContentLength,
		MinContentLength:      DefaultMinContentLength,
		RateLimitRequests:     DefaultRateLimitRequests,
		RateLimitWindow:       DefaultRateLimitWindow,
		ExtractEntities:       true,
		ScanInterval:          DefaultScanInterval,
		DBDir:                 XDGDataDir(),
		ArchiveDir:            filepath.Join(XDGDataDir(), "archive"),
		AlertsDir:             filepath.Join(XDGDataDir(), "alerts"),
	}
}

// ApplyEnv applies environment variable overrides. Environment wins
// over file and defaults but loses to explicit CLI flags, so callers
// apply it before flag binding.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvProxyAddress); v != "" {
		c.ProxyAddress = v
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		c.WebhookURL = v
	}
}

// XDGDataDir returns the XDG data directory for OnionWatch.
// On Linux: ~/.local/share/onionwatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for OnionWatch.
// On Linux: ~/.config/onionwatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid, returning a specific
// error describing the first problem found.
//
// Design decision: We validate once after all sources are merged
// rather than at each point of use, to fail fast with a clear message
// before any network activity.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if len(c.Keywords) == 0 {
		return ErrNoKeywords
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestDelay < 0 {
		return ErrInvalidDelay
	}
	if c.MaxPagesPerSite <= 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxContentLength <= 0 || c.MinContentLength < 0 || int64(c.MinContentLength) > c.MaxContentLength {
		return ErrInvalidContentLength
	}
	if c.ScanInterval <= 0 {
		return ErrInvalidScanInterval
	}
	return nil
}
