// Package alert delivers notifications for matched findings: a keyword
// hit or any extracted entity. Findings with neither never generate
// alerts.
//
// Delivery failures are reported to the caller but are advisory: the
// scanner logs them and keeps going, because a down webhook must not
// stall the crawl or lose the finding (it is already persisted).
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/onionwatch/internal/model"
)

// Notifier delivers an alert for one finding.
type Notifier interface {
	Notify(ctx context.Context, finding *model.Finding) error
}

// FileNotifier drops one JSON file per alert into a directory.
// The simplest possible integration point: anything that can watch a
// directory can consume alerts.
type FileNotifier struct {
	dir string
}

// NewFileNotifier creates a file notifier, creating the directory if
// needed.
func NewFileNotifier(dir string) (*FileNotifier, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create alerts directory: %w", err)
	}
	return &FileNotifier{dir: dir}, nil
}

// Notify writes the finding as a timestamped JSON file.
func (n *FileNotifier) Notify(_ context.Context, finding *model.Finding) error {
	if !finding.HasMatches {
		return nil
	}

	payload, err := json.MarshalIndent(finding, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize alert: %w", err)
	}

	name := fmt.Sprintf("alert_%s.json", time.Now().UTC().Format("20060102T150405.000000000"))
	path := filepath.Join(n.dir, name)
	if err := os.WriteFile(path, payload, 0600); err != nil {
		return fmt.Errorf("failed to write alert file: %w", err)
	}
	return nil
}

// webhookPayload is the JSON body posted to the webhook endpoint.
// A compact summary rather than the full finding: webhook consumers
// are chat integrations and pagers, not archives.
type webhookPayload struct {
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	ObservedAt   string   `json:"observed_at"`
	Keywords     []string `json:"keywords"`
	MatchCount   int      `json:"match_count"`
	EntityCount  int      `json:"entity_count"`
	ContentBrief string   `json:"content_brief,omitempty"`
}

// WebhookNotifier posts alert summaries to an HTTP endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a webhook notifier. The HTTP client is
// injected so alerts can be routed through the Tor proxy or, in tests,
// at an httptest server; nil uses http.DefaultClient.
func NewWebhookNotifier(url string, httpClient *http.Client) *WebhookNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebhookNotifier{url: url, httpClient: httpClient}
}

// Notify posts a summary of the finding to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, finding *model.Finding) error {
	if !finding.HasMatches {
		return nil
	}

	keywords := make([]string, 0, len(finding.KeywordMatches))
	seen := make(map[string]bool)
	for _, m := range finding.KeywordMatches {
		if !seen[m.Keyword] {
			seen[m.Keyword] = true
			keywords = append(keywords, m.Keyword)
		}
	}

	body, err := json.Marshal(webhookPayload{
		URL:          finding.URL,
		Title:        finding.Title,
		ObservedAt:   finding.ObservedAt.UTC().Format(time.RFC3339),
		Keywords:     keywords,
		MatchCount:   len(finding.KeywordMatches),
		EntityCount:  finding.Entities.Count(),
		ContentBrief: finding.ContentSnippet,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body unused

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Multi fans one alert out to several notifiers, collecting errors so
// one failing channel never blocks the others.
type Multi []Notifier

// Notify delivers to every notifier and joins their errors.
func (m Multi) Notify(ctx context.Context, finding *model.Finding) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, finding); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
