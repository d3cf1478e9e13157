package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/onionwatch/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format for
// documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeStatistics(md, summary)
	w.writeEntities(md, summary)
	w.writeMatched(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("OnionWatch Scan Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Findings", strconv.Itoa(summary.Stats.TotalFindings)},
			{"With Matches", strconv.Itoa(summary.Stats.FindingsWithMatches)},
			{"Keyword Matches", strconv.Itoa(summary.Stats.TotalKeywordMatches)},
			{"Unique Entities", strconv.Itoa(summary.Stats.UniqueEntityCount)},
		},
	})
	md.PlainText("")

	if summary.Stats.FindingsWithMatches > 0 {
		md.Warningf(
			"%d finding(s) matched configured keywords and should be reviewed.",
			summary.Stats.FindingsWithMatches,
		)
	} else {
		md.Note("No matched findings in this scan.")
	}
	md.PlainText("")
}

// writeStatistics writes recent activity and keyword frequency.
func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, summary *Summary) {
	md.H2("Recent Activity")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Window", "Findings"},
		Rows: [][]string{
			{"Last hour", strconv.Itoa(summary.Recency.LastHour)},
			{"Last 24 hours", strconv.Itoa(summary.Recency.LastDay)},
			{"Last 7 days", strconv.Itoa(summary.Recency.LastWeek)},
		},
	})
	md.PlainText("")

	if len(summary.Stats.KeywordFrequency) == 0 {
		return
	}

	md.H2("Keyword Frequency")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Stats.KeywordFrequency))
	for _, kw := range sortedKeys(summary.Stats.KeywordFrequency) {
		rows = append(rows, []string{"`" + kw + "`", strconv.Itoa(summary.Stats.KeywordFrequency[kw])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Keyword", "Occurrences"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeEntities writes the entity kind breakdown.
func (w *MarkdownWriter) writeEntities(md *markdown.Markdown, summary *Summary) {
	md.H2("Extracted Entities")
	md.PlainText("")

	if len(summary.Stats.EntityCounts) == 0 {
		md.PlainText("No entities extracted.")
		md.PlainText("")
		return
	}

	var rows [][]string
	for _, kind := range model.EntityKinds {
		if count, ok := summary.Stats.EntityCounts[kind]; ok {
			rows = append(rows, []string{kindLabel(kind), strconv.Itoa(count)})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMatched writes the matched findings table.
func (w *MarkdownWriter) writeMatched(md *markdown.Markdown, summary *Summary) {
	md.H2("Matched Findings")
	md.PlainText("")

	if len(summary.Matched) == 0 {
		md.PlainText("No findings matched configured keywords.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Matched))
	for i, f := range summary.Matched {
		title := f.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			f.ObservedAt.Format("2006-01-02 15:04"),
			truncateString(title, 40),
			"`" + truncateString(f.URL, 60) + "`",
			strconv.Itoa(len(f.KeywordMatches)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Observed", "Title", "URL", "Matches"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range summary.Matched {
		if f.ContentSnippet != "" {
			md.Details(f.URL, f.ContentSnippet)
		}
	}
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by OnionWatch*")
}
