package addr

// Package addr holds the value types shared by the SOCKS5 and SOCKS6
// packages: destination addresses in their common wire encoding,
// username/password credentials, and proxy chain hops.
