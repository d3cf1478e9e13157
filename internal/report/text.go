package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/onionwatch/internal/model"
)

// TextWriter outputs summaries as plain text for terminal display.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary as plain text.
func (w *TextWriter) Write(summary *Summary) (int, error) {
	var b strings.Builder

	b.WriteString("OnionWatch Scan Summary\n")
	b.WriteString("=======================\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "Findings:            %d\n", summary.Stats.TotalFindings)
	fmt.Fprintf(&b, "  with matches:      %d\n", summary.Stats.FindingsWithMatches)
	fmt.Fprintf(&b, "Keyword matches:     %d\n", summary.Stats.TotalKeywordMatches)
	fmt.Fprintf(&b, "Unique entities:     %d\n\n", summary.Stats.UniqueEntityCount)

	b.WriteString("Recent activity:\n")
	fmt.Fprintf(&b, "  last hour:         %d\n", summary.Recency.LastHour)
	fmt.Fprintf(&b, "  last 24 hours:     %d\n", summary.Recency.LastDay)
	fmt.Fprintf(&b, "  last 7 days:       %d\n\n", summary.Recency.LastWeek)

	if len(summary.Stats.KeywordFrequency) > 0 {
		b.WriteString("Keyword frequency:\n")
		for _, kw := range sortedKeys(summary.Stats.KeywordFrequency) {
			fmt.Fprintf(&b, "  %-20s %d\n", kw, summary.Stats.KeywordFrequency[kw])
		}
		b.WriteString("\n")
	}

	if len(summary.Stats.EntityCounts) > 0 {
		b.WriteString("Entities by kind:\n")
		for _, kind := range model.EntityKinds {
			if count, ok := summary.Stats.EntityCounts[kind]; ok {
				fmt.Fprintf(&b, "  %-20s %d\n", kindLabel(kind), count)
			}
		}
		b.WriteString("\n")
	}

	if len(summary.Matched) > 0 {
		b.WriteString("Matched findings:\n")
		for _, f := range summary.Matched {
			title := f.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&b, "  %s  %s\n", f.ObservedAt.Format("2006-01-02 15:04"), truncateString(title, 50))
			fmt.Fprintf(&b, "    %s\n", f.URL)
			fmt.Fprintf(&b, "    matches: %d\n", len(f.KeywordMatches))
		}
		b.WriteString("\n")
	}

	return io.WriteString(w.output, b.String())
}

// sortedKeys returns map keys in lexical order for stable output.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
