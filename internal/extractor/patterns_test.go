package extractor

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/onionwatch/internal/model"
)

func TestExtractAllEntityFamilies(t *testing.T) {
	t.Parallel()

	xmr := "4A" + strings.Repeat("b", 93)

	testCases := []struct {
		name string
		text string
		kind model.EntityKind
		want []string
	}{
		{
			name: "email",
			text: "reach us at admin@leak-site.example or sales@leak-site.example",
			kind: model.EntityEmail,
			want: []string{"admin@leak-site.example", "sales@leak-site.example"},
		},
		{
			name: "bitcoin legacy",
			text: "send to 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa only",
			kind: model.EntityBitcoinAddress,
			want: []string{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		},
		{
			name: "bitcoin segwit",
			text: "segwit bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq accepted",
			kind: model.EntityBitcoinAddress,
			want: []string{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"},
		},
		{
			name: "ethereum",
			text: "eth wallet 0x742d35Cc6634C0532925a3b844Bc454e4438f44e here",
			kind: model.EntityEthereumAddress,
			want: []string{"0x742d35Cc6634C0532925a3b844Bc454e4438f44e"},
		},
		{
			name: "monero",
			text: "xmr " + xmr + " preferred",
			kind: model.EntityMoneroAddress,
			want: []string{xmr},
		},
		{
			name: "phone",
			text: "call 555-123-4567 anytime",
			kind: model.EntityPhoneNumber,
			want: []string{"555-123-4567"},
		},
		{
			name: "phone with country code",
			text: "hotline 1-800-555-0199 open",
			kind: model.EntityPhoneNumber,
			want: []string{"1-800-555-0199"},
		},
		{
			name: "credit card with separators",
			text: "card 4111-1111-1111-1111 works",
			kind: model.EntityCreditCard,
			want: []string{"4111-1111-1111-1111"},
		},
		{
			name: "ip address",
			text: "server at 192.168.1.1 and gateway 10.0.0.254",
			kind: model.EntityIPAddress,
			want: []string{"192.168.1.1", "10.0.0.254"},
		},
		{
			name: "url",
			text: "mirror at http://mirror.example/path?id=2 now",
			kind: model.EntityURL,
			want: []string{"http://mirror.example/path?id=2"},
		},
		{
			name: "ssh key",
			text: "key ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFakeFakeFakeFakeFake trusted",
			kind: model.EntitySSHKey,
			want: []string{"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFakeFakeFakeFakeFake"},
		},
		{
			name: "api key labeled",
			text: `config api_key="sk_live_abcdefghij0123456789" loaded`,
			kind: model.EntityAPIKey,
			want: []string{"sk_live_abcdefghij0123456789"},
		},
		{
			name: "bare token and secret labels",
			text: "token = abcdefghijklmnopqrstuvwx and secret: zyxwvutsrqponmlkjihgfedcba",
			kind: model.EntityAPIKey,
			want: []string{"abcdefghijklmnopqrstuvwx", "zyxwvutsrqponmlkjihgfedcba"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			entities := extractAll(tc.text)
			if !reflect.DeepEqual(entities[tc.kind], tc.want) {
				t.Errorf("extractAll(%q)[%s] = %v, expected %v", tc.text, tc.kind, entities[tc.kind], tc.want)
			}
		})
	}
}

func TestExtractAllPGPBlock(t *testing.T) {
	t.Parallel()

	block := "-----BEGIN PGP PUBLIC KEY BLOCK-----\nmQENBF+\nabc123\n-----END PGP PUBLIC KEY BLOCK-----"
	entities := extractAll("contact key below\n" + block + "\nthanks")

	got := entities[model.EntityPGPKey]
	if len(got) != 1 || got[0] != block {
		t.Errorf("pgp extraction = %v, expected full armored block", got)
	}
}

func TestExtractAllPostFilters(t *testing.T) {
	t.Parallel()

	t.Run("credit card digit count", func(t *testing.T) {
		t.Parallel()

		// 12 digits: below the minimum plausible card length.
		entities := extractAll("code 1234 5678 9012 is not a card")
		if _, ok := entities[model.EntityCreditCard]; ok {
			t.Errorf("12-digit sequence extracted as card: %v", entities[model.EntityCreditCard])
		}

		// 19 digits: still plausible.
		entities = extractAll("card 6011 1111 1111 1111111 long form")
		if len(entities[model.EntityCreditCard]) != 1 {
			t.Errorf("19-digit card not extracted: %v", entities[model.EntityCreditCard])
		}
	})

	t.Run("ip octet range", func(t *testing.T) {
		t.Parallel()

		entities := extractAll("bogus 999.1.1.1 and real 255.255.255.0")
		got := entities[model.EntityIPAddress]
		if !reflect.DeepEqual(got, []string{"255.255.255.0"}) {
			t.Errorf("ip filter = %v, expected only in-range quad", got)
		}

		// A leading zero is still an in-range octet.
		entities = extractAll("proxy behind 192.168.01.1 today")
		got = entities[model.EntityIPAddress]
		if !reflect.DeepEqual(got, []string{"192.168.01.1"}) {
			t.Errorf("ip filter = %v, expected zero-padded quad kept", got)
		}
	})

	t.Run("api key minimum length", func(t *testing.T) {
		t.Parallel()

		entities := extractAll(`api_key="short123" ignored`)
		if _, ok := entities[model.EntityAPIKey]; ok {
			t.Errorf("short credential extracted: %v", entities[model.EntityAPIKey])
		}
	})
}

func TestExtractAllDeduplicatesPerKind(t *testing.T) {
	t.Parallel()

	entities := extractAll("admin@example.com admin@example.com other@example.com")
	got := entities[model.EntityEmail]
	want := []string{"admin@example.com", "other@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedup = %v, expected %v", got, want)
	}
}
