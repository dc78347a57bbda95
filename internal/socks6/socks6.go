package socks6

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

const (
	Ver byte = 0x06

	CmdConnect byte = 0x01

	// Authentication reply status. Success means no further authentication
	// is required.
	AuthSuccess byte = 0x00
	AuthFailure byte = 0x01

	// Operation reply codes.
	ReplySuccess             byte = 0x00
	ReplyServerFailure       byte = 0x01
	ReplyNotAllowed          byte = 0x02
	ReplyNetworkUnreachable  byte = 0x03
	ReplyHostUnreachable     byte = 0x04
	ReplyConnectionRefused   byte = 0x05
	ReplyTTLExpired          byte = 0x06
	ReplyCommandNotSupported byte = 0x07
	ReplyAddressNotSupported byte = 0x08

	// Authentication methods advertised in options.
	AuthMethodNone             byte = 0x00
	AuthMethodUsernamePassword byte = 0x02
)

// MaxInitialData caps the fast-open payload at the draft's 16 KiB limit.
const MaxInitialData = 1 << 14

var (
	ErrVersionMismatch       = errors.New("socks6: protocol version mismatch")
	ErrMalformedFrame        = errors.New("socks6: malformed frame")
	ErrInitialDataTooLarge   = errors.New("socks6: initial data must not be larger than 16384 bytes")
	ErrAuthenticationRefused = errors.New("socks6: proxy refused authentication")
	ErrRequestRejected       = errors.New("socks6: request rejected")
)

// Request is a SOCKS6 request frame:
// [VER][CMD][ATYP DST.ADDR DST.PORT][IDLEN][OPTLEN][OPTIONS].
type Request struct {
	Command           byte
	Destination       addr.Address
	InitialDataLength uint16
	Options           []Option
}

// Reply is a SOCKS6 operation reply frame:
// [VER][CODE][ATYP BND.ADDR BND.PORT][OPTLEN][OPTIONS].
type Reply struct {
	Code    byte
	Bound   addr.Address
	Options []Option
}

// NewReply builds a Reply with the given code and an unspecified IPv4 bound
// address, the form used for refusals.
func NewReply(code byte) Reply {
	return Reply{Code: code, Bound: addr.Address{Type: addr.TypeIPv4, IP: []byte{0, 0, 0, 0}}}
}

// Chain combines the relay's statically configured hops with any hops the
// request itself declares, in that order, yielding the chain this connection
// still has to traverse.
func (r *Request) Chain(static []addr.ProxyAddress) *addr.ProxyChain {
	declared := DeclaredChain(r.Options)
	links := make([]addr.ProxyAddress, 0, len(static)+len(declared))
	links = append(links, static...)
	links = append(links, declared...)
	return addr.NewProxyChain(links)
}

// WriteRequest writes a SOCKS6 request frame.
func WriteRequest(w io.Writer, req Request) error {
	b, err := addr.AppendAddress([]byte{Ver, req.Command}, req.Destination)
	if err != nil {
		return err
	}
	b = binary.BigEndian.AppendUint16(b, req.InitialDataLength)
	b, err = appendOptions(b, req.Options)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadRequest reads a SOCKS6 request frame.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, err
	}
	if hdr[0] != Ver {
		return Request{}, fmt.Errorf("%w: got version %d", ErrVersionMismatch, hdr[0])
	}

	dest, err := addr.ReadAddress(r)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	var idlen [2]byte
	if _, err := io.ReadFull(r, idlen[:]); err != nil {
		return Request{}, err
	}

	opts, err := readOptions(r)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Command:           hdr[1],
		Destination:       dest,
		InitialDataLength: binary.BigEndian.Uint16(idlen[:]),
		Options:           opts,
	}, nil
}

// WriteAuthReply writes an authentication reply [VER][STATUS][OPTLEN][OPTIONS].
func WriteAuthReply(w io.Writer, status byte, opts []Option) error {
	b, err := appendOptions([]byte{Ver, status}, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadAuthReply reads an authentication reply and returns its status.
func ReadAuthReply(r io.Reader) (byte, []Option, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	if hdr[0] != Ver {
		return 0, nil, fmt.Errorf("%w: got version %d", ErrVersionMismatch, hdr[0])
	}
	opts, err := readOptions(r)
	if err != nil {
		return 0, nil, err
	}
	return hdr[1], opts, nil
}

// WriteReply writes an operation reply frame.
func WriteReply(w io.Writer, rep Reply) error {
	b, err := addr.AppendAddress([]byte{Ver, rep.Code}, rep.Bound)
	if err != nil {
		return err
	}
	b, err = appendOptions(b, rep.Options)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadReply reads an operation reply frame.
func ReadReply(r io.Reader) (Reply, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Reply{}, err
	}
	if hdr[0] != Ver {
		return Reply{}, fmt.Errorf("%w: got version %d", ErrVersionMismatch, hdr[0])
	}
	bound, err := addr.ReadAddress(r)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	opts, err := readOptions(r)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Code: hdr[1], Bound: bound, Options: opts}, nil
}
