package socks5

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

func TestUserPassRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		creds addr.Credentials
	}{
		{name: "short", creds: *addr.NewCredentials("user", "pass")},
		{name: "empty_password", creds: *addr.NewCredentials("user", "")},
		{name: "max_len", creds: addr.Credentials{Username: bytes.Repeat([]byte{'u'}, 255), Password: bytes.Repeat([]byte{'p'}, 255)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteUserPassRequest(&buf, tt.creds); err != nil {
				t.Fatal(err)
			}
			got, err := ReadUserPassRequest(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got.Username, tt.creds.Username) || !bytes.Equal(got.Password, tt.creds.Password) {
				t.Fatalf("round trip mismatch: %+v", got)
			}
		})
	}
}

func TestWriteUserPassRequestRejectsOversized(t *testing.T) {
	creds := addr.Credentials{Username: make([]byte, 256)}
	var buf bytes.Buffer
	if err := WriteUserPassRequest(&buf, creds); !errors.Is(err, addr.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written, got %d", buf.Len())
	}
}

func TestRequestReplyRoundTrip(t *testing.T) {
	dests := []addr.Address{
		{Type: addr.TypeIPv4, IP: net.IPv4(192, 0, 2, 1).To4(), Port: 80},
		{Type: addr.TypeIPv6, IP: net.ParseIP("2001:db8::2").To16(), Port: 8443},
		{Type: addr.TypeDomain, Domain: "example.com", Port: 1080},
	}

	for _, dest := range dests {
		var buf bytes.Buffer
		if err := WriteRequest(&buf, Request{Cmd: CmdConnect, Destination: dest}); err != nil {
			t.Fatal(err)
		}
		req, err := ReadRequest(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if req.Cmd != CmdConnect || req.Destination.String() != dest.String() {
			t.Fatalf("request mismatch: %+v", req)
		}

		buf.Reset()
		if err := WriteReply(&buf, Reply{Rep: RepSuccess, Bound: dest}); err != nil {
			t.Fatal(err)
		}
		rep, err := ReadReply(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if rep.Rep != RepSuccess || rep.Bound.String() != dest.String() {
			t.Fatalf("reply mismatch: %+v", rep)
		}
	}
}

func TestReadGreetingRejectsWrongVersion(t *testing.T) {
	if _, err := ReadGreeting(bytes.NewReader([]byte{0x04, 0x01, 0x00})); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestReadMethodSelectionRejectsWrongVersion(t *testing.T) {
	if _, err := ReadMethodSelection(bytes.NewReader([]byte{0x04, 0x00})); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}
