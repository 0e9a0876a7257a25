package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParseHostNoPort returns the host part (no port) from strings like "ip:port", "[v6]:port", or "ip".
func ParseHostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.Trim(s, "[]")
}

// FirstForwardedFor returns the first IP from X-Forwarded-For (left-most), trimmed.
func FirstForwardedFor(xff string) string {
	xff = strings.TrimSpace(xff)
	if i := strings.IndexByte(xff, ','); i >= 0 {
		xff = xff[:i]
	}
	return strings.TrimSpace(xff)
}

// ClientIP resolves the caller address.
// With trustProxy it prefers X-Forwarded-For (first) then X-Real-IP,
// otherwise only RemoteAddr is used.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if v := FirstForwardedFor(r.Header.Get("X-Forwarded-For")); v != "" {
			return ParseHostNoPort(v)
		}
		if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
			return ParseHostNoPort(v)
		}
	}
	return ParseHostNoPort(r.RemoteAddr)
}

// IPMatcher matches addresses against a set of prefixes.
type IPMatcher struct {
	prefixes []netip.Prefix
}

func NewIPMatcher(prefixes []netip.Prefix) *IPMatcher {
	return &IPMatcher{prefixes: prefixes}
}

func (m *IPMatcher) IsEmpty() bool {
	return len(m.prefixes) == 0
}

// Allow reports whether ip falls in any prefix. IPv4-mapped IPv6
// addresses are compared as IPv4.
func (m *IPMatcher) Allow(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
