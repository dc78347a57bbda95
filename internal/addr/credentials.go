package addr

import (
	"errors"
	"fmt"
)

var ErrInvalidCredentials = errors.New("addr: invalid credentials")

// Credentials carries a username/password pair for proxy authentication.
// RFC 1929 limits each field to 255 bytes; Validate must pass before either
// field is put on the wire.
type Credentials struct {
	Username []byte
	Password []byte
}

// NewCredentials builds Credentials from strings.
func NewCredentials(username, password string) *Credentials {
	return &Credentials{Username: []byte(username), Password: []byte(password)}
}

// Validate checks the 255-byte length invariant on both fields.
func (c Credentials) Validate() error {
	if len(c.Username) > 255 {
		return fmt.Errorf("%w: username must not be larger than 255 bytes", ErrInvalidCredentials)
	}
	if len(c.Password) > 255 {
		return fmt.Errorf("%w: password must not be larger than 255 bytes", ErrInvalidCredentials)
	}
	return nil
}
