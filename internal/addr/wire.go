package addr

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// AppendAddress appends the wire form of a, [ATYP][ADDR][PORT], to b. Both
// SOCKS versions use this layout for destination and bound addresses.
func AppendAddress(b []byte, a Address) ([]byte, error) {
	switch a.Type {
	case TypeIPv4:
		ip4 := a.IP.To4()
		if ip4 == nil {
			return nil, fmt.Errorf("%w: not an IPv4 address: %v", ErrBadAddress, a.IP)
		}
		b = append(b, TypeIPv4)
		b = append(b, ip4...)
	case TypeIPv6:
		ip16 := a.IP.To16()
		if ip16 == nil {
			return nil, fmt.Errorf("%w: not an IPv6 address: %v", ErrBadAddress, a.IP)
		}
		b = append(b, TypeIPv6)
		b = append(b, ip16...)
	case TypeDomain:
		if len(a.Domain) == 0 || len(a.Domain) > maxDomainLen {
			return nil, fmt.Errorf("%w: domain must be 1-%d bytes, got %d", ErrBadAddress, maxDomainLen, len(a.Domain))
		}
		b = append(b, TypeDomain, byte(len(a.Domain)))
		b = append(b, a.Domain...)
	default:
		return nil, fmt.Errorf("%w: unknown address type 0x%02x", ErrBadAddress, a.Type)
	}
	return binary.BigEndian.AppendUint16(b, a.Port), nil
}

// WriteAddress writes the wire form of a to w.
func WriteAddress(w io.Writer, a Address) error {
	b, err := AppendAddress(nil, a)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadAddress reads one wire-encoded address from r.
func ReadAddress(r io.Reader) (Address, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return Address{}, err
	}

	a := Address{Type: tag[0]}
	switch tag[0] {
	case TypeIPv4:
		b := make([]byte, 4)
		if _, err := io.ReadFull(r, b); err != nil {
			return Address{}, err
		}
		a.IP = net.IP(b)
	case TypeIPv6:
		b := make([]byte, 16)
		if _, err := io.ReadFull(r, b); err != nil {
			return Address{}, err
		}
		a.IP = net.IP(b)
	case TypeDomain:
		var n [1]byte
		if _, err := io.ReadFull(r, n[:]); err != nil {
			return Address{}, err
		}
		if n[0] == 0 {
			return Address{}, fmt.Errorf("%w: empty domain", ErrBadAddress)
		}
		b := make([]byte, int(n[0]))
		if _, err := io.ReadFull(r, b); err != nil {
			return Address{}, err
		}
		a.Domain = string(b)
	default:
		return Address{}, fmt.Errorf("%w: unknown address type 0x%02x", ErrBadAddress, tag[0])
	}

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return Address{}, err
	}
	a.Port = binary.BigEndian.Uint16(port[:])
	return a, nil
}
