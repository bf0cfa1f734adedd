package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderForwardedFor carries the client address reported by the edge proxy.
const HeaderForwardedFor = "X-Forwarded-For"

// ClientAddress picks the network origin of a request: the first entry of
// the forwarded-for list when present, otherwise the peer address.
func ClientAddress(forwardedFor, peer string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return strings.TrimSpace(peer)
}

// AddressExtractor is the one place request origins are derived. Login and
// verification must share an instance, otherwise bound addresses and
// presented addresses can drift apart (for example by a port suffix).
//
// Binding to this value is a defense-in-depth heuristic. Clients behind a
// shared NAT or proxy share an origin, and X-Forwarded-For is whatever the
// edge reports.
type AddressExtractor struct {
	TrustForwardedFor bool
}

// NewAddressExtractor returns an extractor.
func NewAddressExtractor(trustForwardedFor bool) AddressExtractor {
	return AddressExtractor{TrustForwardedFor: trustForwardedFor}
}

// Extract returns the origin of the request in c.
func (e AddressExtractor) Extract(c *fiber.Ctx) string {
	forwarded := ""
	if e.TrustForwardedFor {
		forwarded = c.Get(HeaderForwardedFor)
	}
	return ClientAddress(forwarded, peerAddress(c))
}

// peerAddress is the transport peer IP without a port.
func peerAddress(c *fiber.Ctx) string {
	ip := c.Context().RemoteIP()
	if ip == nil {
		return ""
	}
	return ip.String()
}
