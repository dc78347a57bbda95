package socks6

// Package socks6 implements the SOCKS6 draft wire protocol: the CONNECT
// request with initial-data length and option list, the authentication and
// operation replies, and the option codec (auth-method advertisement, chain
// forwarding, opaque unknown options).
//
// The Client drives the outbound handshake, either on a fresh connection
// (Connect) or on one the caller already holds (Handshake), and supports
// sending initial payload data ahead of the proxy's success reply.
