package socks5

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

func TestClientHandshakeAgainstNegotiate(t *testing.T) {
	tests := []struct {
		name  string
		creds *addr.Credentials
	}{
		{name: "no_auth"},
		{name: "user_pass", creds: addr.NewCredentials("user", "pass")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()
			defer serverConn.Close()

			g := errgroup.Group{}
			g.Go(func() error {
				if err := Negotiate(serverConn, tt.creds); err != nil {
					return err
				}
				req, err := ReadRequest(serverConn)
				if err != nil {
					return err
				}
				if req.Cmd != CmdConnect {
					return fmt.Errorf("unexpected command: %d", req.Cmd)
				}
				bound, err := addr.FromNetAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345})
				if err != nil {
					return err
				}
				return WriteReply(serverConn, Reply{Rep: RepSuccess, Bound: bound})
			})

			client := NewClient("unused:0", tt.creds, time.Second)
			dest, err := addr.ParseAddress("127.0.0.1:80")
			if err != nil {
				t.Fatal(err)
			}
			bound, err := client.handshake(clientConn, dest)
			if err != nil {
				t.Fatal(err)
			}
			if bound.String() != "127.0.0.1:12345" {
				t.Fatalf("unexpected bound address %q", bound.String())
			}
			if err := g.Wait(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestNegotiateRejectsMissingUserPass(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- Negotiate(serverConn, addr.NewCredentials("user", "pass"))
	}()

	// Client offers only no-auth; the server must answer 0xFF.
	if err := WriteGreeting(clientConn, []byte{MethodNone}); err != nil {
		t.Fatal(err)
	}
	method, err := ReadMethodSelection(clientConn)
	if err != nil {
		t.Fatal(err)
	}
	if method != MethodUnsupportAll {
		t.Fatalf("expected 0xFF selection, got 0x%02x", method)
	}
	if err := <-serverErr; !errors.Is(err, ErrNoAcceptableAuthMethod) {
		t.Fatalf("expected ErrNoAcceptableAuthMethod, got %v", err)
	}
}
