// Package extractor finds keywords and structured entities in
// normalized page text and assembles the results into findings.
//
// Keyword matching is case-insensitive and word-boundary anchored, so
// "bitcoin" never matches inside "bitcoincash". Entity extraction runs
// eleven independent pattern families (emails, cryptocurrency
// addresses, phone numbers, card numbers, IPs, URLs, key material, API
// credentials); each family deduplicates its own hits, and families
// with no hits are omitted from the result entirely.
//
// Design decision: All extraction is pure regex over pre-normalized
// text. No validation beyond the pattern (no Luhn check on card
// numbers, no DNS on emails): the goal is surfacing candidates for a
// human analyst, and a false positive costs a glance while a false
// negative costs a missed leak.
package extractor
