package socks5

import (
	"errors"

	txsocks5 "github.com/txthinking/socks5"
)

// Wire byte values, aliased from the txthinking/socks5 vocabulary.
const (
	Ver     = txsocks5.Ver
	AuthVer = txsocks5.UserPassVer

	MethodNone             = txsocks5.MethodNone
	MethodUsernamePassword = txsocks5.MethodUsernamePassword
	MethodUnsupportAll     = txsocks5.MethodUnsupportAll

	CmdConnect = txsocks5.CmdConnect

	RepSuccess             = txsocks5.RepSuccess
	RepHostUnreachable     = txsocks5.RepHostUnreachable
	RepConnectionRefused   = txsocks5.RepConnectionRefused
	RepCommandNotSupported = txsocks5.RepCommandNotSupported

	UserPassStatusSuccess = txsocks5.UserPassStatusSuccess
	UserPassStatusFailure = txsocks5.UserPassStatusFailure
)

// Protocol failures are a closed set of sentinel errors so callers can tell
// protocol-level rejections apart from transport errors.
var (
	ErrVersionMismatch        = errors.New("socks5: protocol version mismatch")
	ErrNoAcceptableAuthMethod = errors.New("socks5: no acceptable authentication method")
	ErrUnsupportedAuthMethod  = errors.New("socks5: unsupported authentication method")
	ErrAuthenticationRequired = errors.New("socks5: proxy demands authentication but no credentials are configured")
	ErrAuthenticationFailed   = errors.New("socks5: authentication failed")
	ErrRequestRejected        = errors.New("socks5: request rejected")
	ErrMalformedFrame         = errors.New("socks5: malformed frame")
)
