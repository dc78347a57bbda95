package relay

// Package relay implements the inbound side of the proxy: the per-protocol
// Handler capability (accept, refuse, set up), the SOCKS6 handler with
// multi-hop chain forwarding, a supplemental SOCKS5 handler, the accept-loop
// Server, and the bidirectional byte pump.
