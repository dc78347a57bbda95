package socks6

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

// Option kinds understood by this package. Anything else survives decoding
// as a RawOption and is re-encoded verbatim when a relay forwards it.
const (
	KindAuthMethodAdvertisement uint16 = 0x0002

	// KindProxyChain is a private-use kind carrying the hops a relayed
	// connection still has to traverse.
	KindProxyChain uint16 = 0xfd00
)

// Option is one [KIND][LEN][VALUE] triple attached to a request or reply.
type Option interface {
	Kind() uint16
	value() ([]byte, error)
}

// AuthMethodAdvertisement announces the authentication methods the client is
// willing to use along with the length of the initial data it sent.
type AuthMethodAdvertisement struct {
	InitialDataLength uint16
	Methods           []byte
}

func (o AuthMethodAdvertisement) Kind() uint16 { return KindAuthMethodAdvertisement }

func (o AuthMethodAdvertisement) value() ([]byte, error) {
	b := binary.BigEndian.AppendUint16(nil, o.InitialDataLength)
	return append(b, o.Methods...), nil
}

// ChainOption carries the remaining proxy chain as length-prefixed
// socks6:// hop URLs.
type ChainOption struct {
	Links []addr.ProxyAddress
}

func (o ChainOption) Kind() uint16 { return KindProxyChain }

func (o ChainOption) value() ([]byte, error) {
	var b []byte
	for _, l := range o.Links {
		u := l.URL()
		if len(u) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: hop URL too long", ErrMalformedFrame)
		}
		b = binary.BigEndian.AppendUint16(b, uint16(len(u)))
		b = append(b, u...)
	}
	return b, nil
}

// RawOption preserves an option this layer does not understand so it can be
// forwarded opaquely.
type RawOption struct {
	OptionKind uint16
	Data       []byte
}

func (o RawOption) Kind() uint16 { return o.OptionKind }

func (o RawOption) value() ([]byte, error) { return o.Data, nil }

// DeclaredChain returns the hops carried by a ChainOption, or nil when the
// option list declares none.
func DeclaredChain(opts []Option) []addr.ProxyAddress {
	for _, o := range opts {
		if c, ok := o.(ChainOption); ok {
			return c.Links
		}
	}
	return nil
}

// appendOptions appends [OPTLEN][KIND LEN VALUE...] to b. OPTLEN counts the
// encoded option bytes; each LEN counts that option's value bytes.
func appendOptions(b []byte, opts []Option) ([]byte, error) {
	var enc []byte
	for _, o := range opts {
		v, err := o.value()
		if err != nil {
			return nil, err
		}
		if len(v) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: option 0x%04x value too long", ErrMalformedFrame, o.Kind())
		}
		enc = binary.BigEndian.AppendUint16(enc, o.Kind())
		enc = binary.BigEndian.AppendUint16(enc, uint16(len(v)))
		enc = append(enc, v...)
	}
	if len(enc) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: option list too long", ErrMalformedFrame)
	}
	b = binary.BigEndian.AppendUint16(b, uint16(len(enc)))
	return append(b, enc...), nil
}

// readOptions reads [OPTLEN][options...] from r.
func readOptions(r io.Reader) ([]Option, error) {
	var lb [2]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return nil, err
	}
	total := int(binary.BigEndian.Uint16(lb[:]))
	if total == 0 {
		return nil, nil
	}

	b := make([]byte, total)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}

	var opts []Option
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, fmt.Errorf("%w: truncated option header", ErrMalformedFrame)
		}
		kind := binary.BigEndian.Uint16(b)
		vlen := int(binary.BigEndian.Uint16(b[2:]))
		if len(b) < 4+vlen {
			return nil, fmt.Errorf("%w: truncated option 0x%04x", ErrMalformedFrame, kind)
		}
		o, err := parseOption(kind, b[4:4+vlen])
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
		b = b[4+vlen:]
	}
	return opts, nil
}

func parseOption(kind uint16, v []byte) (Option, error) {
	switch kind {
	case KindAuthMethodAdvertisement:
		if len(v) < 2 {
			return nil, fmt.Errorf("%w: auth method advertisement too short", ErrMalformedFrame)
		}
		return AuthMethodAdvertisement{
			InitialDataLength: binary.BigEndian.Uint16(v),
			Methods:           append([]byte(nil), v[2:]...),
		}, nil
	case KindProxyChain:
		var links []addr.ProxyAddress
		for len(v) > 0 {
			if len(v) < 2 {
				return nil, fmt.Errorf("%w: truncated chain hop", ErrMalformedFrame)
			}
			n := int(binary.BigEndian.Uint16(v))
			if len(v) < 2+n {
				return nil, fmt.Errorf("%w: truncated chain hop", ErrMalformedFrame)
			}
			link, err := addr.ParseProxyAddress(string(v[2 : 2+n]))
			if err != nil {
				return nil, err
			}
			links = append(links, link)
			v = v[2+n:]
		}
		return ChainOption{Links: links}, nil
	default:
		return RawOption{OptionKind: kind, Data: append([]byte(nil), v...)}, nil
	}
}
