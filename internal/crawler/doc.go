// Package crawler provides frontier management and politeness-constrained
// fetching for onion services.
//
// # Architecture
//
// The package is built around three cooperating pieces:
//
//   - Client / ConcurrentClient: fetch a single page through the Tor SOCKS5
//     proxy, applying politeness jitter, timeouts, and content-size bounds,
//     and normalizing markup to text inline. Both implement the Fetcher
//     contract; ConcurrentClient additionally dispatches bounded parallel
//     batches.
//   - Controller: drives breadth-first traversal of one seed's frontier
//     (visited set, FIFO pending queue, page cap) and the multi-seed entry
//     points.
//   - RateLimiter: a sliding-window admission gate shared by all in-flight
//     fetches; admissions are serialized so concurrent fetches cannot
//     over-admit past the configured ceiling.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. Onion services have unique requirements (Tor proxy, slow connections)
//  2. We need tight control over request timing to avoid detectable
//     request-rate signatures
//  3. Failure classification feeds directly into the monitoring pipeline
//
// # Failure model
//
// Every per-fetch failure is local. A timeout, connection error, bad
// status, or too-short page skips that URL only; it never aborts a site's
// traversal or a batch's sibling fetches. Failures carry a typed reason
// (*FetchError) so callers filter on the tag instead of matching error
// strings.
package crawler
