package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/onionwatch/internal/model"
)

// DefaultContextWindow is how many characters of surrounding text are
// captured on each side of a keyword match.
const DefaultContextWindow = 100

// Extractor scans normalized text for configured keywords and, when
// enabled, structured entities.
//
// Keyword patterns are compiled once at construction; an Extractor is
// immutable afterwards and safe for concurrent use.
type Extractor struct {
	keywords        []string
	patterns        []*regexp.Regexp
	contextWindow   int
	extractEntities bool
}

// Options configures an Extractor.
type Options struct {
	// ContextWindow overrides the context capture size per side.
	// Zero means DefaultContextWindow.
	ContextWindow int

	// DisableEntities turns off entity extraction, leaving keyword
	// matching only.
	DisableEntities bool
}

// New compiles an extractor for the given keywords. Keywords are
// matched case-insensitively on word boundaries; duplicates (after
// lowercasing) are collapsed. An empty keyword list is valid and
// produces an extractor that only extracts entities.
func New(keywords []string, opts Options) (*Extractor, error) {
	window := opts.ContextWindow
	if window <= 0 {
		window = DefaultContextWindow
	}

	e := &Extractor{
		contextWindow:   window,
		extractEntities: !opts.DisableEntities,
	}

	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true

		p, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile keyword %q: %w", kw, err)
		}
		e.keywords = append(e.keywords, kw)
		e.patterns = append(e.patterns, p)
	}

	return e, nil
}

// Keywords returns the normalized keyword list in configuration order.
func (e *Extractor) Keywords() []string {
	return e.keywords
}

// Extract scans the text and returns every keyword match with its
// surrounding context, plus the entity map. Matches are reported per
// occurrence: a keyword appearing three times yields three entries.
func (e *Extractor) Extract(text string) ([]model.KeywordMatch, model.EntityMap) {
	var matches []model.KeywordMatch
	for i, p := range e.patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			matches = append(matches, model.KeywordMatch{
				Keyword:  e.keywords[i],
				Position: loc[0],
				Context:  contextAround(text, loc[0], loc[1], e.contextWindow),
			})
		}
	}

	var entities model.EntityMap
	if e.extractEntities {
		entities = extractAll(text)
	} else {
		entities = make(model.EntityMap)
	}

	return matches, entities
}

// contextAround returns the text surrounding a match, up to window
// characters per side, with ellipses marking truncated edges.
func contextAround(text string, start, end, window int) string {
	lo := start - window
	hi := end + window
	if lo < 0 {
		lo = 0
	}
	if hi > len(text) {
		hi = len(text)
	}

	ctx := text[lo:hi]
	if lo > 0 {
		ctx = "..." + ctx
	}
	if hi < len(text) {
		ctx += "..."
	}
	return ctx
}
