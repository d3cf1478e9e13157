// Package main provides the entry point for the OnionWatch CLI.
//
// OnionWatch monitors Tor hidden services (.onion addresses) for
// configured keywords and extracts structured entities (emails,
// cryptocurrency addresses, leaked credentials) from page content.
//
// Usage:
//
//	onionwatch scan --seeds seeds.txt --keywords keywords.txt
//	onionwatch watch --interval 1h
//	onionwatch stats
//
// See --help for all available options.
package main

// main is the entry point for OnionWatch.
func main() {
	Execute()
}
