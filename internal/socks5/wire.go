package socks5

import (
	"fmt"
	"io"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

// Request is a SOCKS5 request frame: [VER][CMD][RSV][ATYP][DST.ADDR][DST.PORT].
type Request struct {
	Cmd         byte
	Destination addr.Address
}

// Reply is a SOCKS5 reply frame: [VER][REP][RSV][ATYP][BND.ADDR][BND.PORT].
type Reply struct {
	Rep   byte
	Bound addr.Address
}

// NewReply builds a Reply with an unspecified IPv4 bound address, the form
// used for refusals.
func NewReply(rep byte) Reply {
	return Reply{Rep: rep, Bound: addr.Address{Type: addr.TypeIPv4, IP: []byte{0, 0, 0, 0}}}
}

// WriteGreeting writes the client greeting [VER][NMETHODS][METHODS...].
func WriteGreeting(w io.Writer, methods []byte) error {
	if len(methods) == 0 || len(methods) > 255 {
		return fmt.Errorf("%w: greeting must carry 1-255 methods", ErrMalformedFrame)
	}
	b := make([]byte, 0, 2+len(methods))
	b = append(b, Ver, byte(len(methods)))
	b = append(b, methods...)
	_, err := w.Write(b)
	return err
}

// ReadGreeting reads the client greeting and returns the offered methods.
func ReadGreeting(r io.Reader) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != Ver {
		return nil, fmt.Errorf("%w: got version %d", ErrVersionMismatch, hdr[0])
	}
	if hdr[1] == 0 {
		return nil, fmt.Errorf("%w: greeting with zero methods", ErrMalformedFrame)
	}
	methods := make([]byte, int(hdr[1]))
	if _, err := io.ReadFull(r, methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// WriteMethodSelection writes the server's method choice [VER][METHOD].
func WriteMethodSelection(w io.Writer, method byte) error {
	_, err := w.Write([]byte{Ver, method})
	return err
}

// ReadMethodSelection reads the server's method choice.
func ReadMethodSelection(r io.Reader) (byte, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	if b[0] != Ver {
		return 0, fmt.Errorf("%w: got version %d", ErrVersionMismatch, b[0])
	}
	return b[1], nil
}

// WriteUserPassRequest writes the RFC 1929 sub-negotiation request
// [VER][ULEN][UNAME][PLEN][PASSWD]. Credentials must be validated first.
func WriteUserPassRequest(w io.Writer, c addr.Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b := make([]byte, 0, 3+len(c.Username)+len(c.Password))
	b = append(b, AuthVer, byte(len(c.Username)))
	b = append(b, c.Username...)
	b = append(b, byte(len(c.Password)))
	b = append(b, c.Password...)
	_, err := w.Write(b)
	return err
}

// ReadUserPassRequest reads the RFC 1929 sub-negotiation request.
func ReadUserPassRequest(r io.Reader) (addr.Credentials, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return addr.Credentials{}, err
	}
	if hdr[0] != AuthVer {
		return addr.Credentials{}, fmt.Errorf("%w: got auth version %d", ErrVersionMismatch, hdr[0])
	}

	uname := make([]byte, int(hdr[1]))
	if _, err := io.ReadFull(r, uname); err != nil {
		return addr.Credentials{}, err
	}
	var plen [1]byte
	if _, err := io.ReadFull(r, plen[:]); err != nil {
		return addr.Credentials{}, err
	}
	passwd := make([]byte, int(plen[0]))
	if _, err := io.ReadFull(r, passwd); err != nil {
		return addr.Credentials{}, err
	}
	return addr.Credentials{Username: uname, Password: passwd}, nil
}

// WriteUserPassReply writes the sub-negotiation status [VER][STATUS].
func WriteUserPassReply(w io.Writer, status byte) error {
	_, err := w.Write([]byte{AuthVer, status})
	return err
}

// ReadUserPassReply reads the sub-negotiation status.
func ReadUserPassReply(r io.Reader) (byte, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	if b[0] != AuthVer {
		return 0, fmt.Errorf("%w: got auth version %d", ErrVersionMismatch, b[0])
	}
	return b[1], nil
}

// WriteRequest writes a SOCKS5 request frame.
func WriteRequest(w io.Writer, req Request) error {
	b, err := addr.AppendAddress([]byte{Ver, req.Cmd, 0x00}, req.Destination)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadRequest reads a SOCKS5 request frame.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [3]byte
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
	return Request{Cmd: hdr[1], Destination: dest}, nil
}

// WriteReply writes a SOCKS5 reply frame.
func WriteReply(w io.Writer, rep Reply) error {
	b, err := addr.AppendAddress([]byte{Ver, rep.Rep, 0x00}, rep.Bound)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadReply reads a SOCKS5 reply frame.
func ReadReply(r io.Reader) (Reply, error) {
	var hdr [3]byte
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
	return Reply{Rep: hdr[1], Bound: bound}, nil
}
