package socks5

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

// Client drives the outbound SOCKS5 CONNECT handshake against a proxy.
type Client struct {
	proxyAddr   string
	credentials *addr.Credentials
	dialTimeout time.Duration
}

// NewClient returns a Client for the proxy at proxyAddr ("host:port").
// credentials may be nil for unauthenticated access.
func NewClient(proxyAddr string, credentials *addr.Credentials, dialTimeout time.Duration) *Client {
	return &Client{proxyAddr: proxyAddr, credentials: credentials, dialTimeout: dialTimeout}
}

// Connect dials the proxy and establishes a CONNECT relay to destination
// ("host:port"). It returns the established conn and the proxy's bound
// address. Credentials are validated before any connection is opened; any
// protocol violation aborts the attempt without retry.
func (c *Client) Connect(ctx context.Context, destination string) (net.Conn, addr.Address, error) {
	dest, err := addr.ParseAddress(destination)
	if err != nil {
		return nil, addr.Address{}, err
	}
	if c.credentials != nil {
		if err := c.credentials.Validate(); err != nil {
			return nil, addr.Address{}, err
		}
	}

	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddr)
	if err != nil {
		return nil, addr.Address{}, fmt.Errorf("dial proxy %s: %w", c.proxyAddr, err)
	}

	bound, err := c.handshake(conn, dest)
	if err != nil {
		_ = conn.Close()
		return nil, addr.Address{}, err
	}
	return conn, bound, nil
}

func (c *Client) handshake(conn net.Conn, dest addr.Address) (addr.Address, error) {
	method, err := c.negotiate(conn)
	if err != nil {
		return addr.Address{}, err
	}
	if method == MethodUsernamePassword {
		if err := c.authenticate(conn); err != nil {
			return addr.Address{}, err
		}
	}

	if err := WriteRequest(conn, Request{Cmd: CmdConnect, Destination: dest}); err != nil {
		return addr.Address{}, fmt.Errorf("write request: %w", err)
	}
	rep, err := ReadReply(conn)
	if err != nil {
		return addr.Address{}, fmt.Errorf("read reply: %w", err)
	}
	if rep.Rep != RepSuccess {
		return addr.Address{}, fmt.Errorf("%w: reply code 0x%02x", ErrRequestRejected, rep.Rep)
	}
	return rep.Bound, nil
}

// negotiate sends the greeting and vets the proxy's method choice. It offers
// no-auth always and username/password only when credentials are configured.
func (c *Client) negotiate(conn net.Conn) (byte, error) {
	methods := []byte{MethodNone}
	if c.credentials != nil {
		methods = append(methods, MethodUsernamePassword)
	}
	if err := WriteGreeting(conn, methods); err != nil {
		return 0, fmt.Errorf("write greeting: %w", err)
	}

	method, err := ReadMethodSelection(conn)
	if err != nil {
		return 0, err
	}
	switch method {
	case MethodNone:
		return method, nil
	case MethodUsernamePassword:
		if c.credentials == nil {
			return 0, ErrAuthenticationRequired
		}
		return method, nil
	case MethodUnsupportAll:
		return 0, ErrNoAcceptableAuthMethod
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnsupportedAuthMethod, method)
	}
}

func (c *Client) authenticate(conn net.Conn) error {
	if err := WriteUserPassRequest(conn, *c.credentials); err != nil {
		return fmt.Errorf("write userpass: %w", err)
	}
	status, err := ReadUserPassReply(conn)
	if err != nil {
		return err
	}
	if status != UserPassStatusSuccess {
		return ErrAuthenticationFailed
	}
	return nil
}
