package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/onionwatch/internal/model"
)

// testSummary builds a summary with one matched finding and some stats.
func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Stats: model.Statistics{
			TotalFindings:       5,
			FindingsWithMatches: 2,
			TotalKeywordMatches: 7,
			KeywordFrequency:    map[string]int{"bitcoin": 4, "leak": 3},
			EntityCounts: map[model.EntityKind]int{
				model.EntityBitcoinAddress: 3,
				model.EntityEmail:          2,
			},
			UniqueEntityCount: 4,
		},
		Recency: model.RecencyBuckets{LastHour: 1, LastDay: 2, LastWeek: 5},
		Matched: []*model.Finding{
			{
				URL:            "http://market.onion/listing",
				Title:          "Listing",
				ObservedAt:     time.Date(2026, 8, 28, 11, 30, 0, 0, time.UTC),
				KeywordMatches: []model.KeywordMatch{{Keyword: "bitcoin", Position: 5}},
				ContentSnippet: "pay in bitcoin today",
				HasMatches:     true,
			},
		},
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(testSummary())
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() reported %d bytes, buffer holds %d", n, buf.Len())
	}

	out := buf.String()
	if !strings.HasPrefix(out, "OnionWatch Scan Summary") {
		t.Errorf("output does not start with the summary header:\n%s", out)
	}
	for _, want := range []string{
		"Findings:            5",
		"with matches:      2",
		"Keyword matches:     7",
		"Unique entities:     4",
		"last hour:         1",
		"bitcoin",
		"Bitcoin Address",
		"http://market.onion/listing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).Write(testSummary()); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}

	var got Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Stats.TotalFindings != 5 || got.Recency.LastWeek != 5 {
		t.Errorf("roundtrip summary = %+v, expected original counts", got)
	}
	if len(got.Matched) != 1 || got.Matched[0].URL != "http://market.onion/listing" {
		t.Errorf("roundtrip matched findings = %v, expected one finding", got.Matched)
	}
}

func TestJSONWriterPrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testSummary()); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"") {
		t.Error("pretty-printed output has no indentation")
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(testSummary()); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# OnionWatch Scan Summary",
		"## Recent Activity",
		"## Keyword Frequency",
		"## Extracted Entities",
		"## Matched Findings",
		"Bitcoin Address",
		"`bitcoin`",
		"market.onion/listing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(testSummary())
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("Write() reported %d bytes, buffers hold %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("MultiWriter left one destination empty")
	}
}

func TestKindLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind model.EntityKind
		want string
	}{
		{model.EntityBitcoinAddress, "Bitcoin Address"},
		{model.EntityEmail, "Email"},
		{model.EntityPGPKey, "Pgp Key"},
	}
	for _, tc := range testCases {
		if got := kindLabel(tc.kind); got != tc.want {
			t.Errorf("kindLabel(%s) = %q, expected %q", tc.kind, got, tc.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("short", 50); got != "short" {
		t.Errorf("truncateString kept = %q, expected unchanged", got)
	}
	got := truncateString(strings.Repeat("a", 100), 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateString = %q, expected 10 chars ending with ellipsis", got)
	}
}
