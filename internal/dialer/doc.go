package dialer

// Package dialer provides the outbound dialing abstraction used by the relay
// handlers to reach final destinations.
