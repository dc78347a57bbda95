package socks5

// Package socks5 implements the SOCKS5 wire protocol (RFC 1928) and its
// username/password sub-negotiation (RFC 1929).
//
// It provides the frame codec, an outbound Client that drives the CONNECT
// handshake against an upstream proxy, and the server-side negotiation used
// by the inbound relay. Byte constants are shared with
// github.com/txthinking/socks5 so tests can use that library as an
// independent counterparty.
