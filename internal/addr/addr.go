package addr

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// SOCKS address type tags, shared by the SOCKS5 and SOCKS6 wire formats.
const (
	TypeIPv4   byte = 0x01
	TypeDomain byte = 0x03
	TypeIPv6   byte = 0x04
)

// A domain name must serialize with a single length byte.
const maxDomainLen = 255

var ErrBadAddress = errors.New("addr: bad address")

// Address is a SOCKS destination: a domain name, IPv4, or IPv6 address plus a
// port. The zero value is not valid; construct one via ParseAddress,
// NewAddress, FromNetAddr, or ReadAddress.
type Address struct {
	Type   byte
	Domain string // set when Type is TypeDomain
	IP     net.IP // set when Type is TypeIPv4 or TypeIPv6
	Port   uint16
}

// ParseAddress parses a "host:port" string into an Address.
func ParseAddress(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("%w: port %q", ErrBadAddress, portStr)
	}
	return NewAddress(host, uint16(port))
}

// NewAddress classifies host as an IPv4, IPv6, or domain address.
func NewAddress(host string, port uint16) (Address, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return Address{Type: TypeIPv4, IP: ip4, Port: port}, nil
		}
		return Address{Type: TypeIPv6, IP: ip.To16(), Port: port}, nil
	}
	if len(host) == 0 || len(host) > maxDomainLen {
		return Address{}, fmt.Errorf("%w: domain must be 1-%d bytes, got %d", ErrBadAddress, maxDomainLen, len(host))
	}
	return Address{Type: TypeDomain, Domain: host, Port: port}, nil
}

// FromNetAddr converts a net.Addr (typically a conn's LocalAddr) to an
// Address.
func FromNetAddr(a net.Addr) (Address, error) {
	if ta, ok := a.(*net.TCPAddr); ok {
		if ip4 := ta.IP.To4(); ip4 != nil {
			return Address{Type: TypeIPv4, IP: ip4, Port: uint16(ta.Port)}, nil
		}
		if ip16 := ta.IP.To16(); ip16 != nil {
			return Address{Type: TypeIPv6, IP: ip16, Port: uint16(ta.Port)}, nil
		}
	}
	return ParseAddress(a.String())
}

// Host returns the textual host part without the port.
func (a Address) Host() string {
	if a.Type == TypeDomain {
		return a.Domain
	}
	return a.IP.String()
}

// Network implements net.Addr.
func (a Address) Network() string { return "tcp" }

// String implements net.Addr, returning "host:port".
func (a Address) String() string {
	return net.JoinHostPort(a.Host(), strconv.Itoa(int(a.Port)))
}
