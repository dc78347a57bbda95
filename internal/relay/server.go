package relay

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

// Server accepts inbound connections and hands each one to a Handler on its
// own goroutine. Connections are fully independent; the only shared state is
// the handler's read-only configuration.
type Server struct {
	cfg     Config
	handler Handler
	verbose bool
}

func NewServer(cfg Config, handler Handler, verbose bool) *Server {
	return &Server{cfg: cfg, handler: handler, verbose: verbose}
}

// Serve accepts connections from ln until it is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(ctx, c)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(s.cfg.KeepAlive)
	}
	if s.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.NegotiationTimeout))
	}

	err := s.handler.AcceptRequest(ctx, conn)
	if err == nil {
		return
	}

	var herr *HandshakeError
	if s.verbose || errors.As(err, &herr) {
		log.Debug().
			Err(err).
			Str("remote", conn.RemoteAddr().String()).
			Msg("relay ended with error")
	}
}

// ListenTCP listens on the given network/address and returns a net.Listener
// that applies keepAliveConfig to accepted TCP connections.
func ListenTCP(ctx context.Context, network, address string, keepAliveConfig net.KeepAliveConfig) (net.Listener, error) {
	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, network, address)
	if err != nil {
		return nil, err
	}

	return &KeepAliveListener{Listener: ln, KeepAliveConfig: keepAliveConfig}, nil
}

// KeepAliveListener wraps a net.Listener and applies KeepAliveConfig to any
// accepted *net.TCPConn.
type KeepAliveListener struct {
	net.Listener
	net.KeepAliveConfig
}

func (l *KeepAliveListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(l.KeepAliveConfig)
	}

	return conn, nil
}
