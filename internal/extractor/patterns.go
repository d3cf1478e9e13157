package extractor

import (
	"regexp"
	"strings"

	"github.com/nao1215/onionwatch/internal/model"
)

// Entity pattern families. Each is compiled once at package init.
//
// The patterns are deliberately permissive; post-filters below tighten
// the families where plain regex over-matches (card digit counts, IP
// octet ranges).
var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// Legacy base58 addresses start with 1 or 3; bech32 segwit
	// addresses start with bc1. Both families report as bitcoin.
	btcLegacyPattern = regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)
	btcSegwitPattern = regexp.MustCompile(`\bbc1[a-z0-9]{39,59}\b`)

	ethPattern = regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)

	// Standard Monero addresses are 95 base58 characters starting
	// with 4.
	xmrPattern = regexp.MustCompile(`\b4[0-9AB][1-9A-HJ-NP-Za-km-z]{93}\b`)

	// North American numbering plan with optional country code and
	// common separators.
	phonePattern = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)

	cardPattern = regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{1,7}\b`)

	ipPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)

	urlPattern = regexp.MustCompile(`\bhttps?://[^\s<>"']+`)

	sshKeyPattern = regexp.MustCompile(`\bssh-(?:rsa|dss|ed25519) [A-Za-z0-9+/]+={0,3}`)

	// (?s) so the armored block may span lines in raw markup; the
	// normalizer collapses newlines, but extraction also runs on
	// archived raw content.
	pgpKeyPattern = regexp.MustCompile(`(?s)-----BEGIN PGP (?:PUBLIC|PRIVATE) KEY BLOCK-----.*?-----END PGP (?:PUBLIC|PRIVATE) KEY BLOCK-----`)

	// Credentials announced by a label: api key, token (bare or
	// access-prefixed), and secret (bare or key-suffixed). The captured
	// group is the secret itself; minimum 20 characters filters out
	// short IDs and UI labels.
	apiKeyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bapi[_\s-]?key["'\s:=]+([A-Za-z0-9_\-]{20,})`),
		regexp.MustCompile(`(?i)\b(?:access[_\s-]?)?token["'\s:=]+([A-Za-z0-9._\-]{20,})`),
		regexp.MustCompile(`(?i)\bsecret(?:[_\s-]?key)?["'\s:=]+([A-Za-z0-9_\-]{20,})`),
	}
)

// extractAll runs every pattern family over the text and returns the
// per-kind deduplicated entity map. Kinds with no hits are absent.
func extractAll(text string) model.EntityMap {
	entities := make(model.EntityMap)

	add := func(kind model.EntityKind, values []string) {
		deduped := dedupe(values)
		if len(deduped) > 0 {
			entities[kind] = deduped
		}
	}

	add(model.EntityEmail, emailPattern.FindAllString(text, -1))

	btc := btcLegacyPattern.FindAllString(text, -1)
	btc = append(btc, btcSegwitPattern.FindAllString(text, -1)...)
	add(model.EntityBitcoinAddress, btc)

	add(model.EntityEthereumAddress, ethPattern.FindAllString(text, -1))
	add(model.EntityMoneroAddress, xmrPattern.FindAllString(text, -1))
	add(model.EntityPhoneNumber, phonePattern.FindAllString(text, -1))
	add(model.EntityCreditCard, filterCards(cardPattern.FindAllString(text, -1)))
	add(model.EntityIPAddress, filterIPs(ipPattern.FindAllString(text, -1)))
	add(model.EntityURL, urlPattern.FindAllString(text, -1))
	add(model.EntitySSHKey, sshKeyPattern.FindAllString(text, -1))
	add(model.EntityPGPKey, pgpKeyPattern.FindAllString(text, -1))

	var apiKeys []string
	for _, p := range apiKeyPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			apiKeys = append(apiKeys, m[1])
		}
	}
	add(model.EntityAPIKey, apiKeys)

	return entities
}

// filterCards keeps candidates whose digit count is a plausible card
// length. The regex alone admits sequences like "123-456" fragments.
func filterCards(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		digits := 0
		for _, r := range c {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 13 && digits <= 19 {
			out = append(out, c)
		}
	}
	return out
}

// filterIPs keeps dotted quads whose octets all parse in the 0-255
// range. The regex admits octets up to 999; octets are read as plain
// integers, so a leading zero ("01") is the value 1, not a rejection.
func filterIPs(candidates []string) []string {
	var out []string
candidate:
	for _, c := range candidates {
		for _, octet := range strings.Split(c, ".") {
			n := 0
			for _, r := range octet {
				n = n*10 + int(r-'0')
			}
			if n > 255 {
				continue candidate
			}
		}
		out = append(out, c)
	}
	return out
}

// dedupe removes duplicate values preserving first-seen order.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
