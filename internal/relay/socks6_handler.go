package relay

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anmolbhatia05/socksx/internal/addr"
	"github.com/anmolbhatia05/socksx/internal/socks6"
)

// Socks6Handler relays inbound SOCKS6 CONNECT requests. It is a transparent
// relay: inbound peers are never challenged for credentials.
//
// staticLinks are the hops every connection through this relay must traverse
// before any hops the request itself declares; the list is read-only and
// shared by all connections. An empty list makes this relay the last hop.
type Socks6Handler struct {
	cfg         Config
	staticLinks []addr.ProxyAddress
}

func NewSocks6Handler(cfg Config, staticLinks []addr.ProxyAddress) *Socks6Handler {
	return &Socks6Handler{cfg: cfg, staticLinks: staticLinks}
}

// AcceptRequest sets up the tunnel and pumps bytes until either side closes.
func (h *Socks6Handler) AcceptRequest(ctx context.Context, src net.Conn) error {
	dst, err := h.Setup(ctx, src)
	if err != nil {
		return &HandshakeError{Err: err}
	}

	// Handshake deadlines no longer apply.
	_ = src.SetDeadline(time.Time{})
	_ = dst.SetDeadline(time.Time{})

	return CopyBidirectional(ctx, src, dst)
}

// RefuseRequest notifies the inbound peer that the connection is refused.
func (h *Socks6Handler) RefuseRequest(src net.Conn) error {
	return socks6.WriteReply(src, socks6.NewReply(socks6.ReplyConnectionRefused))
}

// Setup decodes the inbound request, resolves the chain, connects outbound
// (through the next hop or directly), splices any declared initial data, and
// acknowledges success. The returned conn is ready for the byte pump.
func (h *Socks6Handler) Setup(ctx context.Context, src net.Conn) (net.Conn, error) {
	req, err := socks6.ReadRequest(src)
	if err != nil {
		return nil, err
	}

	// Allow unauthenticated access.
	if err := socks6.WriteAuthReply(src, socks6.AuthSuccess, nil); err != nil {
		return nil, err
	}

	if req.Command != socks6.CmdConnect {
		_ = socks6.WriteReply(src, socks6.NewReply(socks6.ReplyCommandNotSupported))
		return nil, fmt.Errorf("%w: command 0x%02x", socks6.ErrRequestRejected, req.Command)
	}

	destination := req.Destination.String()
	log.Debug().Str("destination", destination).Msg("connecting to destination")

	dst, err := h.connect(ctx, req, destination)
	if err != nil {
		_ = socks6.WriteReply(src, socks6.NewReply(socks6.ReplyConnectionRefused))
		return nil, err
	}

	// Initial data goes out before the success reply, preserving the
	// protocol's fast-open semantics.
	if req.InitialDataLength > 0 {
		initialData := make([]byte, int(req.InitialDataLength))
		if _, err := io.ReadFull(src, initialData); err != nil {
			_ = dst.Close()
			return nil, fmt.Errorf("read initial data: %w", err)
		}
		if _, err := dst.Write(initialData); err != nil {
			_ = dst.Close()
			return nil, fmt.Errorf("write initial data: %w", err)
		}
	}

	if err := socks6.WriteReply(src, successReply(dst)); err != nil {
		_ = dst.Close()
		return nil, err
	}

	return dst, nil
}

// connect opens the outbound conn, either through the next chain hop with
// the remaining chain re-encoded as options, or directly to the destination
// when the chain is exhausted. Each hop strips only itself, so every relay
// sees just the suffix it has not yet traversed.
func (h *Socks6Handler) connect(ctx context.Context, req socks6.Request, destination string) (net.Conn, error) {
	chain := req.Chain(h.staticLinks)

	next, ok := chain.NextLink()
	if !ok {
		return h.cfg.Dialer.DialContext(ctx, "tcp", destination)
	}

	var opts []socks6.Option
	if chain.Len() > 0 {
		opts = append(opts, socks6.ChainOption{Links: chain.Remaining()})
	}
	// Options this layer does not understand are forwarded opaquely.
	for _, o := range req.Options {
		if ro, isRaw := o.(socks6.RawOption); isRaw {
			opts = append(opts, ro)
		}
	}

	client := socks6.NewClient(next.Address(), next.Credentials, h.cfg.DialTimeout)
	conn, _, err := client.Connect(ctx, destination, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("connect via hop %s: %w", next.Address(), err)
	}
	return conn, nil
}

// successReply reports the outbound conn's local endpoint as the bound
// address.
func successReply(dst net.Conn) socks6.Reply {
	rep := socks6.NewReply(socks6.ReplySuccess)
	if bound, err := addr.FromNetAddr(dst.LocalAddr()); err == nil {
		rep.Bound = bound
	}
	return rep
}
