package storage

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/nao1215/onionwatch/internal/model"
)

// newTestStore opens a fresh store under a temporary directory.
func newTestStore(t *testing.T) *FindingStore {
	t.Helper()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() unexpected error: %v", err)
		}
	})
	return store
}

// testFinding builds a finding observed at the given time. Timestamps
// are truncated to seconds because that is the stored precision.
func testFinding(url string, observedAt time.Time, hasMatches bool) *model.Finding {
	f := &model.Finding{
		URL:            url,
		Title:          "Test Page",
		ObservedAt:     observedAt.UTC().Truncate(time.Second),
		ContentSnippet: "snippet of page text",
		ContentLength:  2048,
		HasMatches:     hasMatches,
	}
	if hasMatches {
		f.KeywordMatches = []model.KeywordMatch{
			{Keyword: "bitcoin", Position: 12, Context: "pay in bitcoin today"},
		}
		f.Entities = model.EntityMap{
			model.EntityBitcoinAddress: {"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		}
	}
	return f
}

func TestFindingStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	want := testFinding("http://market.onion/listing", time.Now(), true)
	if _, err := store.SaveFinding(ctx, want); err != nil {
		t.Fatalf("SaveFinding() unexpected error: %v", err)
	}

	got, err := store.LoadFindings(ctx)
	if err != nil {
		t.Fatalf("LoadFindings() unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("LoadFindings() returned %d findings, expected 1", len(got))
	}

	f := got[0]
	if f.URL != want.URL || f.Title != want.Title {
		t.Errorf("loaded identity = (%q, %q), expected saved values", f.URL, f.Title)
	}
	if !f.ObservedAt.Equal(want.ObservedAt) {
		t.Errorf("ObservedAt = %v, expected %v", f.ObservedAt, want.ObservedAt)
	}
	if !f.HasMatches {
		t.Error("HasMatches = false after roundtrip, expected true")
	}
	if !reflect.DeepEqual(f.KeywordMatches, want.KeywordMatches) {
		t.Errorf("KeywordMatches = %v, expected %v", f.KeywordMatches, want.KeywordMatches)
	}
	if !reflect.DeepEqual(f.Entities, want.Entities) {
		t.Errorf("Entities = %v, expected %v", f.Entities, want.Entities)
	}
	if f.ContentSnippet != want.ContentSnippet || f.ContentLength != want.ContentLength {
		t.Errorf("content fields = (%q, %d), expected saved values", f.ContentSnippet, f.ContentLength)
	}
}

func TestFindingStoreUpsert(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	observedAt := time.Now()
	first := testFinding("http://market.onion/", observedAt, false)
	if _, err := store.SaveFinding(ctx, first); err != nil {
		t.Fatalf("SaveFinding() unexpected error: %v", err)
	}

	// Same URL and observation time: the row is replaced, not duplicated.
	second := testFinding("http://market.onion/", observedAt, true)
	second.Title = "Updated Title"
	if _, err := store.SaveFinding(ctx, second); err != nil {
		t.Fatalf("SaveFinding() retry unexpected error: %v", err)
	}

	got, err := store.LoadFindings(ctx)
	if err != nil {
		t.Fatalf("LoadFindings() unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("LoadFindings() returned %d findings after upsert, expected 1", len(got))
	}
	if got[0].Title != "Updated Title" || !got[0].HasMatches {
		t.Errorf("upserted row = (%q, %v), expected updated values", got[0].Title, got[0].HasMatches)
	}
}

func TestFindingStoreFindingsWithMatches(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	err := store.SaveFindings(ctx, []*model.Finding{
		testFinding("http://a.onion/", now, true),
		testFinding("http://b.onion/", now, false),
		testFinding("http://c.onion/", now, true),
	})
	if err != nil {
		t.Fatalf("SaveFindings() unexpected error: %v", err)
	}

	got, err := store.FindingsWithMatches(ctx)
	if err != nil {
		t.Fatalf("FindingsWithMatches() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindingsWithMatches() returned %d findings, expected 2", len(got))
	}
	for _, f := range got {
		if !f.HasMatches {
			t.Errorf("finding %s has HasMatches false in matched query", f.URL)
		}
	}
}

func TestFindingStoreFindingsSince(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveFindings(ctx, []*model.Finding{
		testFinding("http://fresh.onion/", time.Now(), true),
		testFinding("http://stale.onion/", time.Now().Add(-48*time.Hour), true),
	})
	if err != nil {
		t.Fatalf("SaveFindings() unexpected error: %v", err)
	}

	got, err := store.FindingsSince(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("FindingsSince() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "http://fresh.onion/" {
		t.Errorf("FindingsSince(24h) = %d findings, expected only the fresh one", len(got))
	}
}

func TestFindingStoreRecentActivity(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveFindings(ctx, []*model.Finding{
		testFinding("http://now.onion/", time.Now(), true),
		testFinding("http://yesterday.onion/", time.Now().Add(-30*time.Hour), true),
	})
	if err != nil {
		t.Fatalf("SaveFindings() unexpected error: %v", err)
	}

	buckets, err := store.RecentActivity(ctx)
	if err != nil {
		t.Fatalf("RecentActivity() unexpected error: %v", err)
	}

	// Buckets are cumulative: the fresh finding lands in all three, the
	// 30-hour-old one only in the weekly bucket.
	if buckets.LastHour != 1 {
		t.Errorf("LastHour = %d, expected 1", buckets.LastHour)
	}
	if buckets.LastDay != 1 {
		t.Errorf("LastDay = %d, expected 1", buckets.LastDay)
	}
	if buckets.LastWeek != 2 {
		t.Errorf("LastWeek = %d, expected 2", buckets.LastWeek)
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("Open() with CreateIfNotExists off on an empty directory succeeded, expected error")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "sqlite default",
			in:   "2026-08-28 10:30:00",
			want: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "rfc3339",
			in:   "2026-08-28T10:30:00Z",
			want: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "garbage becomes zero time",
			in:   "not a timestamp",
			want: time.Time{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tc.in); !got.Equal(tc.want) {
				t.Errorf("parseTimestamp(%q) = %v, expected %v", tc.in, got, tc.want)
			}
		})
	}
}
