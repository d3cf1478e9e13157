package tor

import (
	"encoding/base32"
	"net/url"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV2Length is the length of a legacy v2 onion address without
	// the ".onion" suffix: 16 base32 characters. V2 services were
	// deprecated by the Tor network in 2021, but seed lists and page
	// content still reference them.
	OnionV2Length = 16

	// OnionV3Length is the length of a v3 onion address without the
	// ".onion" suffix: 56 base32 characters.
	OnionV3Length = 56

	// OnionV3Version is the version byte for v3 onion addresses.
	OnionV3Version = 0x03

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

// base32NoPad decodes standard base32 without padding characters.
// Onion address bodies are unpadded base32 (16 chars -> 10 bytes,
// 56 chars -> 35 bytes).
var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// checksumPrefix is the prefix used in v3 onion address checksum calculation.
// This is specified in the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// IsValidAddress reports whether the given host is a well-formed onion
// address: a base32 body of exactly 16 (legacy) or 56 (v3) characters
// followed by the ".onion" suffix.
//
// Design decision: Admission is by length and base32 decodability only.
// The stricter v3 checksum is available via IsChecksumValidV3 but is not
// required here, because seed lists commonly carry addresses collected
// from third parties and a checksum failure is worth a warning, not a
// rejection of the whole seed.
func IsValidAddress(host string) bool {
	host = strings.ToLower(host)
	if !strings.HasSuffix(host, OnionSuffix) {
		return false
	}

	body := strings.TrimSuffix(host, OnionSuffix)
	if len(body) != OnionV2Length && len(body) != OnionV3Length {
		return false
	}

	_, err := base32NoPad.DecodeString(strings.ToUpper(body))
	return err == nil
}

// ValidateSeedURL checks that a seed URL uses an HTTP(S) scheme and
// resolves to a valid onion-service address. A URL failing either check
// is never enqueued for crawling.
func ValidateSeedURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidSeedURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidSeedURL
	}

	if !IsValidAddress(u.Hostname()) {
		return ErrInvalidSeedURL
	}

	return nil
}

// IsChecksumValidV3 reports whether a 56-character onion address carries
// a correct v3 checksum. This matches what Tor itself verifies when
// connecting: the decoded body must be 35 bytes (32-byte ed25519 public
// key, 2-byte checksum, 1 version byte), the version must be 0x03, and
// the checksum must equal the first 2 bytes of
// SHA3-256(".onion checksum" || pubkey || version).
//
// The crawler uses this as an advisory signal only: a seed that passes
// IsValidAddress but fails the checksum is almost certainly a typo or a
// corrupted copy, and is flagged in logs before the (doomed) fetch.
func IsChecksumValidV3(host string) bool {
	host = strings.ToLower(host)
	body := strings.TrimSuffix(host, OnionSuffix)
	if len(body) != OnionV3Length {
		return false
	}

	decoded, err := base32NoPad.DecodeString(strings.ToUpper(body))
	if err != nil || len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != OnionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum computes the checksum bytes for a v3 onion address.
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}
