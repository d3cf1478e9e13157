package model

// Statistics summarizes a collection of Findings.
// It is a pure reduction over its input: no identity, no timestamps of
// its own. Recency buckets are computed by the storage layer, which
// knows the full persisted history, and attached separately.
type Statistics struct {
	// TotalFindings is the number of findings in the input collection.
	TotalFindings int `json:"total_findings"`

	// FindingsWithMatches counts findings whose HasMatches flag is set.
	FindingsWithMatches int `json:"findings_with_matches"`

	// TotalKeywordMatches counts every keyword occurrence across all findings.
	TotalKeywordMatches int `json:"total_keyword_matches"`

	// KeywordFrequency tallies occurrences per keyword.
	KeywordFrequency map[string]int `json:"keyword_frequency,omitempty"`

	// EntityCounts tallies extracted values per entity kind.
	EntityCounts map[EntityKind]int `json:"entity_counts,omitempty"`

	// UniqueEntityCount counts distinct (kind, value) pairs.
	UniqueEntityCount int `json:"unique_entity_count"`
}

// RecencyBuckets counts findings observed within fixed trailing windows.
// These are computed by the storage layer over persisted findings.
type RecencyBuckets struct {
	// LastHour counts findings observed in the trailing hour.
	LastHour int `json:"last_1_hours"`

	// LastDay counts findings observed in the trailing 24 hours.
	LastDay int `json:"last_24_hours"`

	// LastWeek counts findings observed in the trailing 168 hours.
	LastWeek int `json:"last_168_hours"`
}
