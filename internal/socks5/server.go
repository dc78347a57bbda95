package socks5

import (
	"crypto/subtle"
	"fmt"
	"net"

	"github.com/anmolbhatia05/socksx/internal/addr"
)

// Negotiate runs the server side of method selection on an inbound conn.
// When auth is nil any client offering no-auth is accepted; otherwise the
// client must offer username/password and present matching credentials. On
// no acceptable method the 0xFF selection is written before returning.
func Negotiate(conn net.Conn, auth *addr.Credentials) error {
	methods, err := ReadGreeting(conn)
	if err != nil {
		return err
	}

	if auth == nil {
		if !containsMethod(methods, MethodNone) {
			_ = WriteMethodSelection(conn, MethodUnsupportAll)
			return fmt.Errorf("%w: client does not offer no-auth", ErrNoAcceptableAuthMethod)
		}
		return WriteMethodSelection(conn, MethodNone)
	}

	if !containsMethod(methods, MethodUsernamePassword) {
		_ = WriteMethodSelection(conn, MethodUnsupportAll)
		return fmt.Errorf("%w: client does not offer username/password", ErrNoAcceptableAuthMethod)
	}
	if err := WriteMethodSelection(conn, MethodUsernamePassword); err != nil {
		return err
	}

	creds, err := ReadUserPassRequest(conn)
	if err != nil {
		return err
	}
	if !credentialsEqual(creds, *auth) {
		_ = WriteUserPassReply(conn, UserPassStatusFailure)
		return ErrAuthenticationFailed
	}
	return WriteUserPassReply(conn, UserPassStatusSuccess)
}

func containsMethod(methods []byte, want byte) bool {
	for _, m := range methods {
		if m == want {
			return true
		}
	}
	return false
}

func credentialsEqual(got, want addr.Credentials) bool {
	u := subtle.ConstantTimeCompare(got.Username, want.Username)
	p := subtle.ConstantTimeCompare(got.Password, want.Password)
	return u&p == 1
}
