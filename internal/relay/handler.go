package relay

import (
	"context"
	"net"
)

// Handler is the per-protocol-version inbound relay capability. New protocol
// versions add an implementation, not new branching in the serve loop.
type Handler interface {
	// AcceptRequest performs the handshake via Setup and then pumps bytes
	// between src and the outbound conn until either side closes or errors.
	AcceptRequest(ctx context.Context, src net.Conn) error

	// RefuseRequest writes a protocol-correct refusal reply to src and
	// performs no further I/O.
	RefuseRequest(src net.Conn) error

	// Setup runs the protocol handshake with the inbound peer and returns
	// the established outbound conn.
	Setup(ctx context.Context, src net.Conn) (net.Conn, error)
}

// HandshakeError marks a failure that happened before the success reply was
// sent, meaning the inbound peer can still be refused cleanly.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string { return "handshake: " + e.Err.Error() }

func (e *HandshakeError) Unwrap() error { return e.Err }
