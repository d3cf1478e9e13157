package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
proxy_address: "127.0.0.1:9150"
request_timeout: 90s
max_pages_per_site: 25
extract_entities: false
seeds:
  - "http://aaaaaaaaaaaaaaaa.onion/"
keywords:
  - "bitcoin"
  - "database dump"
webhook_url: "https://hooks.example/onionwatch"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() unexpected error: %v", err)
	}

	if f.ProxyAddress != "127.0.0.1:9150" {
		t.Errorf("ProxyAddress = %q, expected file value", f.ProxyAddress)
	}
	if f.RequestTimeout != 90*time.Second {
		t.Errorf("RequestTimeout = %v, expected 90s", f.RequestTimeout)
	}
	if f.ExtractEntities == nil || *f.ExtractEntities {
		t.Error("ExtractEntities not parsed as explicit false")
	}
	if len(f.Keywords) != 2 {
		t.Errorf("Keywords = %v, expected 2 entries", f.Keywords)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfigFile() = %v, expected ErrConfigNotFound", err)
	}
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("proxy_address: [unclosed"), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if _, err := LoadConfigFile(path); err == nil {
		t.Error("LoadConfigFile() succeeded on malformed YAML, expected error")
	}
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	c.Seeds = []string{"http://flag-seed.onion/"}

	enabled := false
	concurrent := true
	f := &File{
		ProxyAddress:    "127.0.0.1:9150",
		MaxPagesPerSite: 50,
		ExtractEntities: &enabled,
		Concurrent:      &concurrent,
		Seeds:           []string{"http://file-seed.onion/"},
		Keywords:        []string{"leak"},
	}
	f.Apply(c)

	if c.ProxyAddress != "127.0.0.1:9150" {
		t.Errorf("ProxyAddress = %q, expected file override", c.ProxyAddress)
	}
	if c.MaxPagesPerSite != 50 {
		t.Errorf("MaxPagesPerSite = %d, expected 50", c.MaxPagesPerSite)
	}
	// Unset file fields keep current values.
	if c.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, expected untouched default", c.RequestTimeout)
	}
	// Explicit booleans apply even when false.
	if c.ExtractEntities {
		t.Error("ExtractEntities = true, expected explicit false from file")
	}
	if !c.Concurrent {
		t.Error("Concurrent = false, expected explicit true from file")
	}
	// Lists append rather than replace.
	if len(c.Seeds) != 2 || c.Seeds[0] != "http://flag-seed.onion/" || c.Seeds[1] != "http://file-seed.onion/" {
		t.Errorf("Seeds = %v, expected inline then file entries", c.Seeds)
	}
	if len(c.Keywords) != 1 {
		t.Errorf("Keywords = %v, expected the file entry", c.Keywords)
	}
}

func TestFindConfigFileExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "my.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if got := FindConfigFile(path); got != path {
		t.Errorf("FindConfigFile(%q) = %q, expected the explicit path", path, got)
	}
	if got := FindConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); got != "" {
		t.Errorf("FindConfigFile() = %q for a missing explicit path, expected empty", got)
	}
}
