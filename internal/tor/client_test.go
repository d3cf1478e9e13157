package tor

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "valid address", address: "127.0.0.1:9050", wantErr: false},
		{name: "valid non-default port", address: "localhost:9150", wantErr: false},
		{name: "missing port", address: "127.0.0.1", wantErr: true},
		{name: "empty host", address: ":9050", wantErr: true},
		{name: "empty port", address: "127.0.0.1:", wantErr: true},
		{name: "port out of range", address: "127.0.0.1:70000", wantErr: true},
		{name: "non-numeric port", address: "127.0.0.1:abc", wantErr: true},
		{name: "empty string", address: "", wantErr: true},
		{name: "url instead of host:port", address: "socks5://127.0.0.1:9050", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(tc.address, 10*time.Second)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("NewClient(%q) error = %v, expected ErrInvalidProxyAddress", tc.address, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient(%q) unexpected error: %v", tc.address, err)
			}
			if client.ProxyAddress() != tc.address {
				t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), tc.address)
			}
		})
	}
}

// fakeSocks5Server runs a minimal SOCKS5 responder for one connection.
// It completes the auth negotiation and answers the CONNECT request
// with "host unreachable", which is what Tor returns for nonexistent
// onion addresses.
func fakeSocks5Server(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Auth negotiation: version + nmethods + methods.
		header := make([]byte, 2)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		methods := make([]byte, int(header[1]))
		if _, err := io.ReadFull(conn, methods); err != nil {
			return
		}
		if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
			return
		}

		// CONNECT request: ver + cmd + rsv + atyp + len + addr + port.
		reqHeader := make([]byte, 5)
		if _, err := io.ReadFull(conn, reqHeader); err != nil {
			return
		}
		rest := make([]byte, int(reqHeader[4])+2)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return
		}

		// Reply: host unreachable with a zero IPv4 bind address.
		_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}()

	return ln.Addr().String()
}

func TestClientCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("working SOCKS5 proxy reports OK", func(t *testing.T) {
		t.Parallel()

		addr := fakeSocks5Server(t)
		client, err := NewClient(addr, 10*time.Second)
		if err != nil {
			t.Fatalf("NewClient() unexpected error: %v", err)
		}

		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("CheckConnection() = %v, expected ProxyStatusOK", status)
		}
	})

	t.Run("non-SOCKS responder reports wrong type", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		t.Cleanup(func() { _ = ln.Close() })

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			// An HTTP server greeting instead of a SOCKS5 reply.
			buf := make([]byte, 3)
			_, _ = io.ReadFull(conn, buf)
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n"))
		}()

		client, err := NewClient(ln.Addr().String(), 10*time.Second)
		if err != nil {
			t.Fatalf("NewClient() unexpected error: %v", err)
		}

		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("CheckConnection() = %v, expected ProxyStatusWrongType", status)
		}
	})

	t.Run("closed port reports cannot connect", func(t *testing.T) {
		t.Parallel()

		// Reserve a port and close it so nothing listens there.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		client, err := NewClient(addr, 10*time.Second)
		if err != nil {
			t.Fatalf("NewClient() unexpected error: %v", err)
		}

		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("CheckConnection() = %v, expected ProxyStatusCannotConnect", status)
		}
	})
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status  ProxyStatus
		text    string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not Tor)", ErrProxyNotTor},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			if got := tc.status.String(); got != tc.text {
				t.Errorf("String() = %q, expected %q", got, tc.text)
			}
			if err := tc.status.Error(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Error() = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}

func TestClientNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 42*time.Second)
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}

	httpClient := client.NewHTTPClient()
	if httpClient.Timeout != 42*time.Second {
		t.Errorf("Timeout = %v, expected 42s", httpClient.Timeout)
	}
	if httpClient.Jar == nil {
		t.Error("expected a cookie jar to be configured")
	}
}
