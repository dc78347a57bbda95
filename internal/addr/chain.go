package addr

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

var ErrChainResolution = errors.New("addr: chain resolution")

// ProxyAddress is one hop in a proxy chain: a SOCKS6 relay the connection
// must be handed off to, with optional credentials for that hop. It is
// immutable configuration data, safe to share across connections.
type ProxyAddress struct {
	Host        string
	Port        uint16
	Credentials *Credentials
}

// ParseProxyAddress parses a socks6://[user:pass@]host:port hop URL. The
// port defaults to 1080.
func ParseProxyAddress(s string) (ProxyAddress, error) {
	u, err := url.Parse(s)
	if err != nil {
		return ProxyAddress{}, fmt.Errorf("%w: %v", ErrChainResolution, err)
	}
	if u.Scheme != "socks6" {
		return ProxyAddress{}, fmt.Errorf("%w: unsupported scheme %q in %q", ErrChainResolution, u.Scheme, s)
	}
	if u.Path != "" && u.Path != "/" {
		return ProxyAddress{}, fmt.Errorf("%w: hop URL path should be empty in %q", ErrChainResolution, s)
	}

	host := u.Hostname()
	if host == "" {
		return ProxyAddress{}, fmt.Errorf("%w: missing host in %q", ErrChainResolution, s)
	}

	portStr := u.Port()
	if portStr == "" {
		portStr = "1080"
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return ProxyAddress{}, fmt.Errorf("%w: port %q in %q", ErrChainResolution, portStr, s)
	}

	pa := ProxyAddress{Host: host, Port: uint16(port)}
	if u.User != nil {
		pass, _ := u.User.Password()
		pa.Credentials = NewCredentials(u.User.Username(), pass)
	}
	return pa, nil
}

// Address returns the "host:port" dial target for this hop.
func (p ProxyAddress) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
}

// URL renders the hop back into its socks6:// form, the representation used
// when a chain is forwarded to the next relay.
func (p ProxyAddress) URL() string {
	u := url.URL{Scheme: "socks6", Host: p.Address()}
	if p.Credentials != nil {
		u.User = url.UserPassword(string(p.Credentials.Username), string(p.Credentials.Password))
	}
	return u.String()
}

// ProxyChain is the ordered list of hops one relayed connection still has to
// traverse. It is consumed front to back, one instance per inbound request;
// it is not safe for concurrent use and is never shared.
type ProxyChain struct {
	links []ProxyAddress
}

// NewProxyChain copies links into a fresh chain.
func NewProxyChain(links []ProxyAddress) *ProxyChain {
	return &ProxyChain{links: append([]ProxyAddress(nil), links...)}
}

// NextLink removes and returns the first remaining hop. The second return is
// false when the chain is exhausted.
func (c *ProxyChain) NextLink() (ProxyAddress, bool) {
	if len(c.links) == 0 {
		return ProxyAddress{}, false
	}
	next := c.links[0]
	c.links = c.links[1:]
	return next, true
}

// Remaining returns the hops not yet consumed.
func (c *ProxyChain) Remaining() []ProxyAddress { return c.links }

// Len returns the number of hops not yet consumed.
func (c *ProxyChain) Len() int { return len(c.links) }
