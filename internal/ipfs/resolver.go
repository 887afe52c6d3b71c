// Package ipfs rewrites content-addressed ipfs:// URIs into gateway URLs.
package ipfs

import (
	"errors"
	"strings"
)

// Scheme is the only content-addressed scheme recognised.
const Scheme = "ipfs://"

// DefaultGateway is the public gateway used when none is configured.
const DefaultGateway = "https://ipfs.io/ipfs/"

// ErrUnsupportedScheme reports a source that does not start with ipfs://.
var ErrUnsupportedScheme = errors.New("ipfs: source must start with " + Scheme)

// Resolver maps ipfs:// URIs onto a fixed HTTP gateway.
type Resolver struct {
	gateway string
}

// NewResolver returns a Resolver for gateway, falling back to DefaultGateway.
// The gateway is used verbatim as a prefix, so it should end in a slash.
func NewResolver(gateway string) Resolver {
	gateway = strings.TrimSpace(gateway)
	if gateway == "" {
		gateway = DefaultGateway
	}
	return Resolver{gateway: gateway}
}

// Gateway returns the configured gateway prefix.
func (r Resolver) Gateway() string {
	if r.gateway == "" {
		return DefaultGateway
	}
	return r.gateway
}

// Resolve returns the gateway URL for uri, or ErrUnsupportedScheme.
func (r Resolver) Resolve(uri string) (string, error) {
	return ToHTTP(r.Gateway(), uri)
}

// ToHTTP concatenates gateway with the content identifier of an ipfs:// URI.
func ToHTTP(gateway, uri string) (string, error) {
	cid, ok := strings.CutPrefix(uri, Scheme)
	if !ok {
		return "", ErrUnsupportedScheme
	}
	return gateway + cid, nil
}
