package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadSeedList reads a newline-delimited seed URL file. Blank lines
// and lines starting with '#' are skipped. An unreadable file is a
// fatal configuration error: silently monitoring nothing is worse
// than failing loudly.
//
// Seed URLs are not validated here; the crawler validates each seed
// at admission so one bad entry skips that seed, not the whole run.
func LoadSeedList(path string) ([]string, error) {
	return loadLineList(path, "seed list")
}

// LoadKeywordList reads a newline-delimited keyword file with the
// same comment and blank-line handling as LoadSeedList.
func LoadKeywordList(path string) ([]string, error) {
	return loadLineList(path, "keyword list")
}

// loadLineList reads a newline-delimited list file.
func loadLineList(path, what string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", what, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", what, err)
	}

	return entries, nil
}

// ResolveLists appends entries from the configured seed and keyword
// files to the inline lists and deduplicates the results.
func (c *Config) ResolveLists() error {
	if c.SeedsFile != "" {
		seeds, err := LoadSeedList(c.SeedsFile)
		if err != nil {
			return err
		}
		c.Seeds = append(c.Seeds, seeds...)
	}
	if c.KeywordsFile != "" {
		keywords, err := LoadKeywordList(c.KeywordsFile)
		if err != nil {
			return err
		}
		c.Keywords = append(c.Keywords, keywords...)
	}

	c.Seeds = dedupeStrings(c.Seeds)
	c.Keywords = dedupeStrings(c.Keywords)
	return nil
}

// dedupeStrings removes duplicates preserving first-seen order.
func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
