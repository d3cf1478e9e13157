package model

import "time"

// EntityKind identifies one fixed category of structured data the
// extractor recognizes in page text.
//
// Design decision: We use a typed string enum rather than a free-form
// map key so that the set of kinds is closed and serialization is stable.
// A kind that matched nothing is absent from the EntityMap, never present
// with an empty value slice.
type EntityKind string

// The fixed set of entity kinds.
const (
	EntityEmail           EntityKind = "email"
	EntityBitcoinAddress  EntityKind = "bitcoin_address"
	EntityEthereumAddress EntityKind = "ethereum_address"
	EntityMoneroAddress   EntityKind = "monero_address"
	EntityPhoneNumber     EntityKind = "phone_number"
	EntityCreditCard      EntityKind = "credit_card"
	EntityIPAddress       EntityKind = "ip_address"
	EntityURL             EntityKind = "url"
	EntitySSHKey          EntityKind = "ssh_key"
	EntityPGPKey          EntityKind = "pgp_key"
	EntityAPIKey          EntityKind = "api_key"
)

// EntityKinds lists all entity kinds in stable report order.
var EntityKinds = []EntityKind{
	EntityEmail,
	EntityBitcoinAddress,
	EntityEthereumAddress,
	EntityMoneroAddress,
	EntityPhoneNumber,
	EntityCreditCard,
	EntityIPAddress,
	EntityURL,
	EntitySSHKey,
	EntityPGPKey,
	EntityAPIKey,
}

// String returns the kind identifier used in serialized output.
func (k EntityKind) String() string {
	return string(k)
}

// EntityMap maps entity kinds to deduplicated extracted values.
// Kinds with zero matches must be absent from the map.
type EntityMap map[EntityKind][]string

// Count returns the total number of values across all kinds.
func (m EntityMap) Count() int {
	total := 0
	for _, values := range m {
		total += len(values)
	}
	return total
}

// HasAny reports whether any kind holds at least one value.
func (m EntityMap) HasAny() bool {
	for _, values := range m {
		if len(values) > 0 {
			return true
		}
	}
	return false
}

// KeywordMatch records a single occurrence of a watched keyword.
// One KeywordMatch is produced per occurrence, in discovery order.
type KeywordMatch struct {
	// Keyword is the matched keyword in its lower-cased registry form.
	Keyword string `json:"keyword"`

	// Position is the byte offset of the match in the normalized text.
	Position int `json:"position"`

	// Context is a bounded window of text around the match,
	// ellipsis-marked on sides truncated at document edges.
	Context string `json:"context"`
}

// Finding is the canonical per-page output record combining fetch
// metadata, keyword matches, and extracted entities.
//
// A Finding is created once per crawled page and is immutable afterwards.
// Storage identity is derived externally from (URL, ObservedAt).
type Finding struct {
	// URL is the page URL the finding was produced from.
	URL string `json:"url"`

	// Title is the page title, empty if the document had none.
	Title string `json:"title,omitempty"`

	// ObservedAt is the time the page was fetched.
	ObservedAt time.Time `json:"observed_at"`

	// KeywordMatches holds every keyword occurrence in discovery order.
	KeywordMatches []KeywordMatch `json:"keyword_matches,omitempty"`

	// Entities maps entity kinds to deduplicated values.
	// Kinds that matched nothing are absent.
	Entities EntityMap `json:"entities,omitempty"`

	// ContentSnippet is a bounded excerpt of the page text, centered on
	// the first keyword match when one exists.
	ContentSnippet string `json:"content_snippet,omitempty"`

	// ContentLength is the length of the normalized page text.
	ContentLength int `json:"content_length"`

	// HasMatches is true when the finding has at least one keyword
	// match or at least one extracted entity value. Alerting keys off
	// this flag.
	HasMatches bool `json:"has_matches"`
}
