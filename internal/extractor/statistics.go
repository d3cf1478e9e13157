package extractor

import (
	"github.com/nao1215/onionwatch/internal/model"
)

// Aggregate computes summary statistics over a set of findings.
//
// UniqueEntityCount counts distinct (kind, value) pairs across all
// findings, so the same bitcoin address on five pages counts once, but
// the same string appearing as both a URL and inside a PGP block would
// count per kind.
func Aggregate(findings []*model.Finding) model.Statistics {
	stats := model.Statistics{
		KeywordFrequency: make(map[string]int),
		EntityCounts:     make(map[model.EntityKind]int),
	}

	uniqueEntities := make(map[model.EntityKind]map[string]bool)

	for _, f := range findings {
		stats.TotalFindings++
		if f.HasMatches {
			stats.FindingsWithMatches++
		}
		stats.TotalKeywordMatches += len(f.KeywordMatches)

		for _, m := range f.KeywordMatches {
			stats.KeywordFrequency[m.Keyword]++
		}

		for kind, values := range f.Entities {
			stats.EntityCounts[kind] += len(values)
			if uniqueEntities[kind] == nil {
				uniqueEntities[kind] = make(map[string]bool)
			}
			for _, v := range values {
				uniqueEntities[kind][v] = true
			}
		}
	}

	for _, values := range uniqueEntities {
		stats.UniqueEntityCount += len(values)
	}

	return stats
}
