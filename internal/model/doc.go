// Package model defines the core data structures used throughout OnionWatch.
//
// This package contains the following main types:
//   - FetchResult: Represents a successfully fetched and normalized page
//   - Finding: The canonical per-page output record with matches and entities
//   - EntityMap: Typed map of extracted entity kinds to deduplicated values
//   - Statistics: Aggregate counters computed over a collection of Findings
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, extractor, storage, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for alert output and
// database storage.
package model
