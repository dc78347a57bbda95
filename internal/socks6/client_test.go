package socks6

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

func TestClientHandshake(t *testing.T) {
	tests := []struct {
		name        string
		creds       *addr.Credentials
		initialData []byte
		wantMethods []byte
	}{
		{name: "no_auth"},
		{name: "user_pass", creds: addr.NewCredentials("user", "pass"), wantMethods: []byte{AuthMethodUsernamePassword}},
		{name: "initial_data", initialData: []byte("fast open payload")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()
			defer serverConn.Close()

			bound := addr.Address{Type: addr.TypeIPv4, IP: net.IPv4(127, 0, 0, 1).To4(), Port: 9999}

			g := errgroup.Group{}
			g.Go(func() error {
				req, err := ReadRequest(serverConn)
				if err != nil {
					return err
				}
				if req.Command != CmdConnect {
					t.Errorf("unexpected command 0x%02x", req.Command)
				}
				if int(req.InitialDataLength) != len(tt.initialData) {
					t.Errorf("initial data length: expected %d got %d", len(tt.initialData), req.InitialDataLength)
				}

				adv, ok := req.Options[len(req.Options)-1].(AuthMethodAdvertisement)
				if !ok {
					t.Errorf("last option is not an auth method advertisement: %#v", req.Options)
				} else {
					if int(adv.InitialDataLength) != len(tt.initialData) {
						t.Errorf("advertised initial data length: expected %d got %d", len(tt.initialData), adv.InitialDataLength)
					}
					if !bytes.Equal(adv.Methods, tt.wantMethods) {
						t.Errorf("advertised methods: expected %v got %v", tt.wantMethods, adv.Methods)
					}
				}

				// Initial data arrives right after the request frame,
				// before any reply is sent.
				if len(tt.initialData) > 0 {
					buf := make([]byte, len(tt.initialData))
					if _, err := io.ReadFull(serverConn, buf); err != nil {
						return err
					}
					if !bytes.Equal(buf, tt.initialData) {
						t.Errorf("initial data: expected %q got %q", tt.initialData, buf)
					}
				}

				if err := WriteAuthReply(serverConn, AuthSuccess, nil); err != nil {
					return err
				}
				return WriteReply(serverConn, Reply{Code: ReplySuccess, Bound: bound})
			})

			client := NewClient("unused:0", tt.creds, time.Second)
			dest, err := addr.ParseAddress("example.com:443")
			if err != nil {
				t.Fatal(err)
			}

			got, err := client.Handshake(clientConn, dest, tt.initialData, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != bound.String() {
				t.Fatalf("bound: expected %q got %q", bound.String(), got.String())
			}
			if err := g.Wait(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestClientHandshakeAuthRefused(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		if _, err := ReadRequest(serverConn); err != nil {
			return err
		}
		return WriteAuthReply(serverConn, AuthFailure, nil)
	})

	client := NewClient("unused:0", nil, time.Second)
	dest, _ := addr.ParseAddress("example.com:443")
	_, err := client.Handshake(clientConn, dest, nil, nil)
	if !errors.Is(err, ErrAuthenticationRefused) {
		t.Fatalf("expected ErrAuthenticationRefused, got %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestClientHandshakeRejectedReply(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		if _, err := ReadRequest(serverConn); err != nil {
			return err
		}
		if err := WriteAuthReply(serverConn, AuthSuccess, nil); err != nil {
			return err
		}
		return WriteReply(serverConn, NewReply(ReplyConnectionRefused))
	})

	client := NewClient("unused:0", nil, time.Second)
	dest, _ := addr.ParseAddress("example.com:443")
	_, err := client.Handshake(clientConn, dest, nil, nil)
	if !errors.Is(err, ErrRequestRejected) {
		t.Fatalf("expected ErrRequestRejected, got %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestClientValidatesBeforeIO(t *testing.T) {
	dest, _ := addr.ParseAddress("example.com:443")

	t.Run("oversized_credentials", func(t *testing.T) {
		creds := &addr.Credentials{Username: make([]byte, 256)}
		client := NewClient("192.0.2.1:1081", creds, time.Second)
		if _, _, err := client.Connect(context.Background(), "example.com:443", nil, nil); !errors.Is(err, addr.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("initial_data_too_large", func(t *testing.T) {
		client := NewClient("192.0.2.1:1081", nil, time.Second)
		clientConn, serverConn := net.Pipe()
		defer clientConn.Close()
		defer serverConn.Close()

		_, err := client.Handshake(clientConn, dest, make([]byte, MaxInitialData+1), nil)
		if !errors.Is(err, ErrInitialDataTooLarge) {
			t.Fatalf("expected ErrInitialDataTooLarge, got %v", err)
		}
	})
}
