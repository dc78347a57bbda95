package addr

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantType byte
		wantHost string
	}{
		{name: "ipv4", in: "127.0.0.1:80", wantType: TypeIPv4, wantHost: "127.0.0.1"},
		{name: "ipv6", in: "[::1]:443", wantType: TypeIPv6, wantHost: "::1"},
		{name: "domain", in: "example.com:1080", wantType: TypeDomain, wantHost: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAddress(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if a.Type != tt.wantType {
				t.Fatalf("type: expected 0x%02x got 0x%02x", tt.wantType, a.Type)
			}
			if a.Host() != tt.wantHost {
				t.Fatalf("host: expected %q got %q", tt.wantHost, a.Host())
			}
		})
	}
}

func TestParseAddressRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "no-port", "example.com:notaport", strings.Repeat("a", 256) + ".com:80"} {
		if _, err := ParseAddress(in); !errors.Is(err, ErrBadAddress) {
			t.Fatalf("%q: expected ErrBadAddress, got %v", in, err)
		}
	}
}

func TestAddressWireRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		addr Address
	}{
		{name: "ipv4", addr: Address{Type: TypeIPv4, IP: net.IPv4(10, 0, 0, 1).To4(), Port: 8080}},
		{name: "ipv6", addr: Address{Type: TypeIPv6, IP: net.ParseIP("2001:db8::1").To16(), Port: 443}},
		{name: "domain", addr: Address{Type: TypeDomain, Domain: "proxy.example.com", Port: 1080}},
		{name: "domain_max_len", addr: Address{Type: TypeDomain, Domain: strings.Repeat("a", 255), Port: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteAddress(&buf, tt.addr); err != nil {
				t.Fatal(err)
			}
			got, err := ReadAddress(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.addr.String() {
				t.Fatalf("expected %q got %q", tt.addr.String(), got.String())
			}
			if buf.Len() != 0 {
				t.Fatalf("expected no trailing bytes, got %d", buf.Len())
			}
		})
	}
}

func TestAppendAddressRejectsLongDomain(t *testing.T) {
	a := Address{Type: TypeDomain, Domain: strings.Repeat("a", 256), Port: 80}
	if _, err := AppendAddress(nil, a); !errors.Is(err, ErrBadAddress) {
		t.Fatalf("expected ErrBadAddress, got %v", err)
	}
}

func TestFromNetAddr(t *testing.T) {
	a, err := FromNetAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345})
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != TypeIPv4 || a.String() != "127.0.0.1:12345" {
		t.Fatalf("unexpected address %+v", a)
	}
}
