package monitor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nao1215/onionwatch/internal/crawler"
	"github.com/nao1215/onionwatch/internal/extractor"
	"github.com/nao1215/onionwatch/internal/model"
	"github.com/nao1215/onionwatch/internal/storage"
)

// testSeed is a well-formed v2 onion seed for pipeline tests.
const testSeed = "http://aaaaaaaaaaaaaaaa.onion/"

// siteFetcher serves canned page text from an in-memory graph.
type siteFetcher struct {
	pages map[string]string // canonical URL -> normalized text
	links map[string][]string
}

func (f *siteFetcher) Fetch(_ context.Context, rawURL string) (*model.FetchResult, error) {
	text, ok := f.pages[rawURL]
	if !ok {
		return nil, &crawler.FetchError{URL: rawURL, Reason: crawler.FailureConnection}
	}
	return &model.FetchResult{
		URL:            rawURL,
		StatusCode:     200,
		Title:          "Page",
		RawMarkup:      "<html><body>" + text + "</body></html>",
		NormalizedText: text,
		OutboundLinks:  f.links[rawURL],
		FetchedAt:      time.Now().UTC(),
	}, nil
}

// recordingNotifier captures the findings it is asked to deliver.
type recordingNotifier struct {
	delivered []*model.Finding
}

func (n *recordingNotifier) Notify(_ context.Context, f *model.Finding) error {
	n.delivered = append(n.delivered, f)
	return nil
}

func newTestExtractor(t *testing.T, keywords []string) *extractor.Extractor {
	t.Helper()
	ext, err := extractor.New(keywords, extractor.Options{})
	if err != nil {
		t.Fatalf("extractor.New() unexpected error: %v", err)
	}
	return ext
}

func TestScannerScanOnce(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{
		pages: map[string]string{
			testSeed:           "welcome page, nothing interesting here",
			testSeed + "sale":  "fresh database dump for sale, contact seller@market.onion",
			testSeed + "about": "about this hidden service",
		},
		links: map[string][]string{
			testSeed: {testSeed + "sale", testSeed + "about"},
		},
	}

	store, err := storage.Open(t.TempDir(), storage.DefaultOptions())
	if err != nil {
		t.Fatalf("storage.Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	notifier := &recordingNotifier{}
	s := NewScanner(
		crawler.NewController(f, crawler.WithMaxPages(10)),
		newTestExtractor(t, []string{"database dump"}),
		[]string{testSeed},
		WithStore(store),
		WithNotifier(notifier),
	)

	findings, err := s.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() unexpected error: %v", err)
	}

	// Every fetched page becomes a finding, matched or not.
	if len(findings) != 3 {
		t.Fatalf("ScanOnce() produced %d findings, expected 3", len(findings))
	}

	var matched *model.Finding
	for _, f := range findings {
		if f.HasMatches {
			if matched != nil {
				t.Fatal("more than one finding matched, expected exactly one")
			}
			matched = f
		}
	}
	if matched == nil {
		t.Fatal("no finding matched the configured keyword")
	}
	if matched.URL != testSeed+"sale" {
		t.Errorf("matched URL = %q, expected the sale page", matched.URL)
	}
	if len(matched.Entities[model.EntityEmail]) != 1 {
		t.Errorf("matched entities = %v, expected the seller email", matched.Entities)
	}

	// Only the matched finding alerts.
	if len(notifier.delivered) != 1 || notifier.delivered[0].URL != matched.URL {
		t.Errorf("notifier delivered %d alerts, expected 1 for the matched finding", len(notifier.delivered))
	}

	// All findings persisted.
	stored, err := store.LoadFindings(context.Background())
	if err != nil {
		t.Fatalf("LoadFindings() unexpected error: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("store holds %d findings, expected 3", len(stored))
	}
}

func TestScannerScanOnceArchives(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{testSeed: "quiet page"}}

	dir := t.TempDir()
	archive, err := storage.NewArchive(dir)
	if err != nil {
		t.Fatalf("storage.NewArchive() unexpected error: %v", err)
	}

	s := NewScanner(
		crawler.NewController(f),
		newTestExtractor(t, []string{"unseen"}),
		[]string{testSeed},
		WithArchive(archive),
	)

	if _, err := s.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce() unexpected error: %v", err)
	}

	// Raw markup archived even though nothing matched.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading archive dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("archive holds %d files, expected 1", len(entries))
	}
}

func TestScannerScanOnceEphemeral(t *testing.T) {
	t.Parallel()

	// No store, archive, or notifier: the pass still returns findings.
	f := &siteFetcher{pages: map[string]string{testSeed: "standalone page"}}
	s := NewScanner(crawler.NewController(f), newTestExtractor(t, nil), []string{testSeed})

	findings, err := s.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("ScanOnce() produced %d findings, expected 1", len(findings))
	}
}

func TestMonitorRunCancellation(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{testSeed: "page"}}
	s := NewScanner(crawler.NewController(f), newTestExtractor(t, nil), []string{testSeed})
	m := NewMonitor(s, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	// Give the first pass a moment, then cancel mid-interval.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, expected context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return within 5s of cancellation")
	}
}
