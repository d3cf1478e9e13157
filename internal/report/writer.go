// Package report renders scan summaries in text, JSON, and Markdown.
package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/onionwatch/internal/model"
)

// Summary is the renderable view of a scan's output: aggregate
// statistics, recent activity buckets, and the findings worth showing.
type Summary struct {
	// GeneratedAt is when the summary was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Stats holds aggregate counts over all findings in scope.
	Stats model.Statistics `json:"statistics"`

	// Recency holds finding counts by trailing time window.
	Recency model.RecencyBuckets `json:"recent_activity"`

	// Matched holds the findings flagged as matched, newest first.
	Matched []*model.Finding `json:"matched_findings,omitempty"`
}

// Writer defines the interface for summary output.
//
// Design decision: We use an interface to allow different output
// formats and destinations. This enables writing to files, stdout, or
// network connections with the same API.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *Summary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, for example
// terminal and file at once.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers. Returns the
// total bytes written; stops on the first error.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for summary writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// titleCaser renders entity kind tags as human labels.
var titleCaser = cases.Title(language.English)

// kindLabel converts an entity kind tag like "bitcoin_address" into a
// display label like "Bitcoin Address".
func kindLabel(kind model.EntityKind) string {
	return titleCaser.String(strings.ReplaceAll(string(kind), "_", " "))
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
