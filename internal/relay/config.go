package relay

import (
	"net"
	"time"

	"github.com/anmolbhatia05/socksx/internal/dialer"
)

type Config struct {
	// NegotiationTimeout bounds the inbound handshake; zero disables it.
	NegotiationTimeout time.Duration

	// DialTimeout bounds outbound connects to chain hops.
	DialTimeout time.Duration

	KeepAlive net.KeepAliveConfig

	// Dialer reaches final destinations when the chain is exhausted.
	Dialer dialer.Dialer
}
