package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".onionwatch.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML representation of the configuration file. All
// fields are optional; unset fields keep their current values when
// applied to a Config.
type File struct {
	ProxyAddress          string        `yaml:"proxy_address"`
	RequestTimeout        time.Duration `yaml:"request_timeout"`
	RequestDelay          time.Duration `yaml:"request_delay"`
	MaxPagesPerSite       int           `yaml:"max_pages_per_site"`
	MaxConcurrentRequests int           `yaml:"max_concurrent_requests"`
	MaxContentLength      int64         `yaml:"max_content_length"`
	MinContentLength      int           `yaml:"min_content_length"`
	RateLimitRequests     int           `yaml:"rate_limit_requests"`
	RateLimitWindow       time.Duration `yaml:"rate_limit_window"`
	ExtractEntities       *bool         `yaml:"extract_entities"`
	UserAgent             string        `yaml:"user_agent"`
	Seeds                 []string      `yaml:"seeds"`
	Keywords              []string      `yaml:"keywords"`
	SeedsFile             string        `yaml:"seeds_file"`
	KeywordsFile          string        `yaml:"keywords_file"`
	DBDir                 string        `yaml:"db_dir"`
	ArchiveRawContent     *bool         `yaml:"archive_raw_content"`
	ArchiveDir            string        `yaml:"archive_dir"`
	AlertsDir             string        `yaml:"alerts_dir"`
	WebhookURL            string        `yaml:"webhook_url"`
	ScanInterval          time.Duration `yaml:"scan_interval"`
	Concurrent            *bool         `yaml:"concurrent"`
}

// LoadConfigFile loads the YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound; callers
// decide whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply merges the file's set fields into the config. Lists append
// rather than replace, so seeds can come from both file and flags.
func (f *File) Apply(c *Config) {
	if f.ProxyAddress != "" {
		c.ProxyAddress = f.ProxyAddress
	}
	if f.RequestTimeout != 0 {
		c.RequestTimeout = f.RequestTimeout
	}
	if f.RequestDelay != 0 {
		c.RequestDelay = f.RequestDelay
	}
	if f.MaxPagesPerSite != 0 {
		c.MaxPagesPerSite = f.MaxPagesPerSite
	}
	if f.MaxConcurrentRequests != 0 {
		c.MaxConcurrentRequests = f.MaxConcurrentRequests
	}
	if f.MaxContentLength != 0 {
		c.MaxContentLength = f.MaxContentLength
	}
	if f.MinContentLength != 0 {
		c.MinContentLength = f.MinContentLength
	}
	if f.RateLimitRequests != 0 {
		c.RateLimitRequests = f.RateLimitRequests
	}
	if f.RateLimitWindow != 0 {
		c.RateLimitWindow = f.RateLimitWindow
	}
	if f.ExtractEntities != nil {
		c.ExtractEntities = *f.ExtractEntities
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	c.Seeds = append(c.Seeds, f.Seeds...)
	c.Keywords = append(c.Keywords, f.Keywords...)
	if f.SeedsFile != "" {
		c.SeedsFile = f.SeedsFile
	}
	if f.KeywordsFile != "" {
		c.KeywordsFile = f.KeywordsFile
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.ArchiveRawContent != nil {
		c.ArchiveRawContent = *f.ArchiveRawContent
	}
	if f.ArchiveDir != "" {
		c.ArchiveDir = f.ArchiveDir
	}
	if f.AlertsDir != "" {
		c.AlertsDir = f.AlertsDir
	}
	if f.WebhookURL != "" {
		c.WebhookURL = f.WebhookURL
	}
	if f.ScanInterval != 0 {
		c.ScanInterval = f.ScanInterval
	}
	if f.Concurrent != nil {
		c.Concurrent = *f.Concurrent
	}
}

// FindConfigFile searches for the configuration file in order:
// the explicit path if given, the current directory, the XDG config
// directory, then the user's home directory. Returns the path found,
// or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
