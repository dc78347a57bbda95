package relay

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/anmolbhatia05/socksx/internal/addr"
	"github.com/anmolbhatia05/socksx/internal/socks5"
)

// Socks5Handler relays inbound SOCKS5 CONNECT requests. When auth is set,
// inbound peers must present matching username/password credentials.
// Chaining is a SOCKS6 feature; this handler always dials the destination
// directly.
type Socks5Handler struct {
	cfg  Config
	auth *addr.Credentials
}

func NewSocks5Handler(cfg Config, auth *addr.Credentials) *Socks5Handler {
	return &Socks5Handler{cfg: cfg, auth: auth}
}

// AcceptRequest sets up the tunnel and pumps bytes until either side closes.
func (h *Socks5Handler) AcceptRequest(ctx context.Context, src net.Conn) error {
	dst, err := h.Setup(ctx, src)
	if err != nil {
		return &HandshakeError{Err: err}
	}

	_ = src.SetDeadline(time.Time{})
	_ = dst.SetDeadline(time.Time{})

	return CopyBidirectional(ctx, src, dst)
}

// RefuseRequest notifies the inbound peer that the connection is refused.
func (h *Socks5Handler) RefuseRequest(src net.Conn) error {
	return socks5.WriteReply(src, socks5.NewReply(socks5.RepConnectionRefused))
}

// Setup negotiates with the inbound peer, dials the destination, and
// acknowledges success.
func (h *Socks5Handler) Setup(ctx context.Context, src net.Conn) (net.Conn, error) {
	if err := socks5.Negotiate(src, h.auth); err != nil {
		return nil, err
	}

	req, err := socks5.ReadRequest(src)
	if err != nil {
		return nil, err
	}
	if req.Cmd != socks5.CmdConnect {
		_ = socks5.WriteReply(src, socks5.NewReply(socks5.RepCommandNotSupported))
		return nil, fmt.Errorf("%w: command 0x%02x", socks5.ErrRequestRejected, req.Cmd)
	}

	dst, err := h.cfg.Dialer.DialContext(ctx, "tcp", req.Destination.String())
	if err != nil {
		_ = socks5.WriteReply(src, socks5.NewReply(socks5.RepHostUnreachable))
		return nil, err
	}

	rep := socks5.NewReply(socks5.RepSuccess)
	if bound, berr := addr.FromNetAddr(dst.LocalAddr()); berr == nil {
		rep.Bound = bound
	}
	if err := socks5.WriteReply(src, rep); err != nil {
		_ = dst.Close()
		return nil, err
	}

	return dst, nil
}
