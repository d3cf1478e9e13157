package tor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout is the timeout for checking if the Tor proxy is available.
// We use a short timeout here because this is just a connectivity check,
// not an actual request through Tor.
const checkProxyTimeout = 2 * time.Second

// Client provides Tor network connectivity.
// It wraps a SOCKS5 dialer and builds HTTP clients that route all
// traffic through the configured proxy.
//
// Design decision: The client performs no circuit management. Users run
// their own Tor daemon; we only use its SOCKS5 port, which is standard
// Go functionality via golang.org/x/net/proxy.
type Client struct {
	// proxyAddress is the Tor SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer for Tor connections.
	// We cache this to avoid recreating it for each connection.
	dialer proxy.Dialer

	// timeout is the default timeout for HTTP clients created by this client.
	timeout time.Duration
}

// NewClient creates a new Tor client with the given proxy address and timeout.
//
// The proxyAddress must be in "host:port" format (e.g., "127.0.0.1:9050").
// The timeout is used as the default for HTTP clients created by this client.
//
// This function validates the proxy address format but does not verify
// that the proxy is actually running. Call CheckConnection() to verify.
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// We use nil for auth because Tor's SOCKS port typically doesn't require auth
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	// Port must be a number between 1 and 65535
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5TestOnion is a synthetic .onion address used for SOCKS5 verification.
	// This is intentionally a non-existent address - we only need to verify the proxy
	// responds to SOCKS5 CONNECT requests, not that the connection succeeds.
	// Using a fake address avoids any interaction with real services.
	socks5TestOnion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckConnection verifies that the Tor proxy is running and accessible.
// It returns a ProxyStatus indicating the result of the check.
//
// The check works by performing a SOCKS5 protocol handshake to verify:
//  1. The proxy speaks SOCKS5 protocol
//  2. The proxy accepts connections without authentication
//  3. The proxy can handle .onion domain connections
//
// Security note: This is more robust than just checking HTTP response strings,
// as a fake proxy attack cannot easily mimic proper SOCKS5 protocol behavior.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Step 1: SOCKS5 version negotiation.
	// Client sends: version (1 byte) + num auth methods (1 byte) + auth methods (N bytes).
	// We offer no authentication (0x00) only.
	_, err = conn.Write([]byte{socks5Version, 0x01, socks5AuthNone})
	if err != nil {
		return ProxyStatusCannotConnect
	}

	// Server responds: version (1 byte) + selected auth method (1 byte)
	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		// Anything else means it didn't speak SOCKS5 properly
		return ProxyStatusWrongType
	}

	version := authResp[0]
	authMethod := authResp[1]

	if version != socks5Version {
		return ProxyStatusWrongType
	}

	// Tor's SOCKS port accepts unauthenticated connections by default
	if authMethod == socks5AuthNoAccept || authMethod != socks5AuthNone {
		return ProxyStatusWrongType
	}

	// Step 2: Verify the proxy can handle connection requests.
	// We send a connection request to a test .onion address; the proxy
	// should respond even with a failure for a non-existent address.
	// This verifies it's actually proxying, not just accepting handshakes.
	testOnion := socks5TestOnion
	testPort := uint16(80)

	// Build CONNECT request: version + cmd + reserved + addr type + addr + port
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDomID,
		byte(len(testOnion)),
	}
	connectReq = append(connectReq, []byte(testOnion)...)
	connectReq = append(connectReq, byte(testPort>>8), byte(testPort&0xFF))

	_, err = conn.Write(connectReq)
	if err != nil {
		return ProxyStatusCannotConnect
	}

	// Read response header: version + reply + reserved + addr type (at least 4 bytes).
	// The actual connection may fail; we are only testing the proxy itself.
	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	// Any response (success=0x00 or failure codes like 0x01-0x08) indicates
	// the proxy is working. Tor will return 0x04 (Host unreachable) or
	// 0x01 (General failure) for invalid/non-existent .onion addresses,
	// but the important thing is it processed the SOCKS5 request.
	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client configured to use the Tor proxy.
// The returned client routes all requests through Tor's SOCKS5 proxy.
//
// Design decisions:
//   - TLS verification is disabled because hidden services use self-signed certs
//   - Cookies are enabled via a cookie jar for session continuity during crawling
//   - Redirect limit is 10 to prevent redirect loops while allowing normal redirects
//   - Idle connection limits are smaller than defaults because each connection
//     consumes a Tor circuit, which is a limited resource
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return c.dialer.Dial(network, addr)
		},
		// Hidden services typically use self-signed certificates; the
		// .onion address itself provides authentication via the onion
		// service protocol.
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Required for .onion services
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		// Disable compression to mitigate CRIME/BREACH-style side channels.
		// Compressed response sizes can leak content information, which is
		// particularly concerning for anonymity-focused Tor connections.
		DisableCompression: true,
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}
