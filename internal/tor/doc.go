// Package tor provides Tor network connectivity for OnionWatch.
//
// This package wraps a SOCKS5 dialer to route HTTP traffic through a Tor
// proxy, verifies proxy health with a protocol-level handshake, and
// validates onion service addresses found in seed lists and page links.
//
// Design decision: OnionWatch never manages Tor circuits or runs a Tor
// daemon itself. A reachable SOCKS proxy is assumed (typically a local
// Tor daemon at 127.0.0.1:9050); the proxy endpoint is the only
// anonymization mechanism the crawler touches.
//
// The package is designed to be used with dependency injection - create a
// Client and pass it to components that need Tor connectivity rather than
// using global state.
package tor
