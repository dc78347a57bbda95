package socks6

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

// Client drives the outbound SOCKS6 handshake against a proxy.
//
// Authentication support is the reduced subset of the draft: when
// credentials are configured the client advertises username/password in its
// auth-method advertisement but does not run the auth sub-negotiation on the
// wire; the proxy is expected to answer with AuthSuccess.
type Client struct {
	proxyAddr   string
	credentials *addr.Credentials
	dialTimeout time.Duration
}

// NewClient returns a Client for the proxy at proxyAddr ("host:port").
// credentials may be nil.
func NewClient(proxyAddr string, credentials *addr.Credentials, dialTimeout time.Duration) *Client {
	return &Client{proxyAddr: proxyAddr, credentials: credentials, dialTimeout: dialTimeout}
}

// Connect dials the proxy and establishes a CONNECT relay to destination
// ("host:port"), sending initialData ahead of the proxy's reply. options are
// appended to the request after the client's own auth-method advertisement.
func (c *Client) Connect(ctx context.Context, destination string, initialData []byte, options []Option) (net.Conn, addr.Address, error) {
	dest, err := addr.ParseAddress(destination)
	if err != nil {
		return nil, addr.Address{}, err
	}
	if err := c.validate(initialData); err != nil {
		return nil, addr.Address{}, err
	}

	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddr)
	if err != nil {
		return nil, addr.Address{}, fmt.Errorf("dial proxy %s: %w", c.proxyAddr, err)
	}

	bound, err := c.Handshake(conn, dest, initialData, options)
	if err != nil {
		_ = conn.Close()
		return nil, addr.Address{}, err
	}
	return conn, bound, nil
}

// Handshake runs the SOCKS6 handshake on an already-open conn, as a relay
// does when forwarding through the next chain hop. It returns the proxy's
// bound address.
func (c *Client) Handshake(conn net.Conn, destination addr.Address, initialData []byte, options []Option) (addr.Address, error) {
	if err := c.validate(initialData); err != nil {
		return addr.Address{}, err
	}

	var methods []byte
	if c.credentials != nil {
		methods = append(methods, AuthMethodUsernamePassword)
	}

	opts := make([]Option, 0, len(options)+1)
	opts = append(opts, options...)
	opts = append(opts, AuthMethodAdvertisement{
		InitialDataLength: uint16(len(initialData)),
		Methods:           methods,
	})

	req := Request{
		Command:           CmdConnect,
		Destination:       destination,
		InitialDataLength: uint16(len(initialData)),
		Options:           opts,
	}
	if err := WriteRequest(conn, req); err != nil {
		return addr.Address{}, fmt.Errorf("write request: %w", err)
	}
	if len(initialData) > 0 {
		if _, err := conn.Write(initialData); err != nil {
			return addr.Address{}, fmt.Errorf("write initial data: %w", err)
		}
	}

	status, _, err := ReadAuthReply(conn)
	if err != nil {
		return addr.Address{}, fmt.Errorf("read auth reply: %w", err)
	}
	if status != AuthSuccess {
		return addr.Address{}, fmt.Errorf("%w: status 0x%02x", ErrAuthenticationRefused, status)
	}

	rep, err := ReadReply(conn)
	if err != nil {
		return addr.Address{}, fmt.Errorf("read reply: %w", err)
	}
	if rep.Code != ReplySuccess {
		return addr.Address{}, fmt.Errorf("%w: reply code 0x%02x", ErrRequestRejected, rep.Code)
	}
	return rep.Bound, nil
}

func (c *Client) validate(initialData []byte) error {
	if c.credentials != nil {
		if err := c.credentials.Validate(); err != nil {
			return err
		}
	}
	if len(initialData) > MaxInitialData {
		return ErrInitialDataTooLarge
	}
	return nil
}
