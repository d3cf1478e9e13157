package extractor

import (
	"github.com/nao1215/onionwatch/internal/model"
)

// DefaultSnippetLength is the size of the stored content snippet.
const DefaultSnippetLength = 500

// Assemble builds a finding from a fetch result and its extraction
// output. The finding's HasMatches flag is set when the keyword scan
// hit or any entity family extracted a value; downstream alerting uses
// it as its gate.
func Assemble(fetch *model.FetchResult, matches []model.KeywordMatch, entities model.EntityMap) *model.Finding {
	return &model.Finding{
		URL:            fetch.URL,
		Title:          fetch.Title,
		ObservedAt:     fetch.FetchedAt,
		KeywordMatches: matches,
		Entities:       entities,
		ContentSnippet: snippet(fetch.NormalizedText, matches, DefaultSnippetLength),
		ContentLength:  len(fetch.NormalizedText),
		HasMatches:     len(matches) > 0 || entities.HasAny(),
	}
}

// snippet selects the stored excerpt: centered on the first keyword
// match when there is one, otherwise the leading window. Truncated
// edges are marked with ellipses so a reader knows text continues.
func snippet(text string, matches []model.KeywordMatch, length int) string {
	if len(text) <= length {
		return text
	}

	lo := 0
	if len(matches) > 0 {
		lo = matches[0].Position - length/2
		if lo < 0 {
			lo = 0
		}
	}

	hi := lo + length
	if hi > len(text) {
		hi = len(text)
		lo = hi - length
	}

	s := text[lo:hi]
	if lo > 0 {
		s = "..." + s
	}
	if hi < len(text) {
		s += "..."
	}
	return s
}
