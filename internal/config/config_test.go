package config

import (
	"errors"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	c := NewConfig()
	c.Seeds = []string{"http://aaaaaaaaaaaaaaaa.onion/"}
	c.Keywords = []string{"bitcoin"}
	return c
}

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.ProxyAddress != DefaultProxyAddress {
		t.Errorf("ProxyAddress = %q, expected %q", c.ProxyAddress, DefaultProxyAddress)
	}
	if c.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, expected %v", c.RequestTimeout, DefaultRequestTimeout)
	}
	if c.RequestDelay != DefaultRequestDelay {
		t.Errorf("RequestDelay = %v, expected %v", c.RequestDelay, DefaultRequestDelay)
	}
	if c.MaxPagesPerSite != DefaultMaxPagesPerSite {
		t.Errorf("MaxPagesPerSite = %d, expected %d", c.MaxPagesPerSite, DefaultMaxPagesPerSite)
	}
	if c.MaxConcurrentRequests != DefaultMaxConcurrentRequests {
		t.Errorf("MaxConcurrentRequests = %d, expected %d", c.MaxConcurrentRequests, DefaultMaxConcurrentRequests)
	}
	if !c.ExtractEntities {
		t.Error("ExtractEntities = false, expected entity extraction on by default")
	}
	if c.ScanInterval != DefaultScanInterval {
		t.Errorf("ScanInterval = %v, expected %v", c.ScanInterval, DefaultScanInterval)
	}
	if c.DBDir == "" || c.ArchiveDir == "" || c.AlertsDir == "" {
		t.Error("expected XDG-derived directories to be set")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "no seeds",
			mutate:  func(c *Config) { c.Seeds = nil },
			wantErr: ErrNoSeeds,
		},
		{
			name:    "no keywords",
			mutate:  func(c *Config) { c.Keywords = nil },
			wantErr: ErrNoKeywords,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.RequestTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.RequestDelay = -time.Second },
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPagesPerSite = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.MaxConcurrentRequests = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "min above max content length",
			mutate:  func(c *Config) { c.MinContentLength = 2 << 20 },
			wantErr: ErrInvalidContentLength,
		},
		{
			name:    "zero scan interval",
			mutate:  func(c *Config) { c.ScanInterval = 0 },
			wantErr: ErrInvalidScanInterval,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tc.mutate(c)

			err := c.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, expected nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv(EnvProxyAddress, "127.0.0.1:9150")
	t.Setenv(EnvWebhookURL, "https://hooks.example/onionwatch")

	c := NewConfig()
	c.ApplyEnv()

	if c.ProxyAddress != "127.0.0.1:9150" {
		t.Errorf("ProxyAddress = %q, expected env override", c.ProxyAddress)
	}
	if c.WebhookURL != "https://hooks.example/onionwatch" {
		t.Errorf("WebhookURL = %q, expected env override", c.WebhookURL)
	}
}

func TestConfigApplyEnvEmptyKeepsDefaults(t *testing.T) {
	t.Setenv(EnvProxyAddress, "")

	c := NewConfig()
	c.ApplyEnv()
	if c.ProxyAddress != DefaultProxyAddress {
		t.Errorf("ProxyAddress = %q, expected default with empty env", c.ProxyAddress)
	}
}
