package panel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies a failed panel call. It drives operator diagnostics only;
// every kind is handled the same way by callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindDNS
	KindConnRefused
	KindConnReset
	KindHostUnreachable
	KindTimeout
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindServerError
)

// Category groups kinds into the coarse failure taxonomy.
type Category string

const (
	CategoryTransport Category = "transport_failure"
	CategoryAuth      Category = "auth_failure"
	CategoryNotFound  Category = "not_found"
	CategoryRateLimit Category = "rate_limited"
	CategoryUpstream  Category = "upstream_error"
	CategoryUnknown   Category = "unknown"
)

func (k Kind) String() string {
	switch k {
	case KindDNS:
		return "ENOTFOUND"
	case KindConnRefused:
		return "ECONNREFUSED"
	case KindConnReset:
		return "ECONNRESET"
	case KindHostUnreachable:
		return "EHOSTUNREACH"
	case KindTimeout:
		return "ETIMEDOUT"
	case KindUnauthorized:
		return "401"
	case KindForbidden:
		return "403"
	case KindNotFound:
		return "404"
	case KindRateLimited:
		return "429"
	case KindServerError:
		return "5xx"
	default:
		return "UNKNOWN"
	}
}

// Category returns the taxonomy bucket of k.
func (k Kind) Category() Category {
	switch k {
	case KindDNS, KindConnRefused, KindConnReset, KindHostUnreachable, KindTimeout:
		return CategoryTransport
	case KindUnauthorized, KindForbidden:
		return CategoryAuth
	case KindNotFound:
		return CategoryNotFound
	case KindRateLimited:
		return CategoryRateLimit
	case KindServerError:
		return CategoryUpstream
	default:
		return CategoryUnknown
	}
}

// Hint returns the operator-facing explanation for k.
func (k Kind) Hint() string {
	switch k {
	case KindDNS:
		return "DNS error. Ensure your network connection and DNS server are functioning correctly."
	case KindConnRefused:
		return "Connection refused. Ensure the panel is running and reachable."
	case KindConnReset:
		return "Connection reset by peer. The panel closed the connection unexpectedly."
	case KindHostUnreachable:
		return "Host unreachable. The panel is down or not reachable."
	case KindTimeout:
		return "Connection timed out. The panel took too long to respond."
	case KindUnauthorized:
		return "Unauthorized. Invalid API key or the key doesn't have permission to perform this action."
	case KindForbidden:
		return "Forbidden. Invalid API key or the key doesn't have permission to perform this action."
	case KindNotFound:
		return "Not found. Invalid panel URL or the server doesn't exist."
	case KindRateLimited:
		return "Too many requests. The panel is rate limiting this client."
	case KindServerError:
		return "Internal server error. This is an error with your panel."
	default:
		return "Unexpected error while talking to the panel."
	}
}

// Error is returned by every failed Client call.
type Error struct {
	Kind     Kind
	Op       string // "details" | "resources"
	ServerID string
	Status   int // HTTP status, 0 for transport failures
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("panel %s %s: %s: %v", e.Op, e.ServerID, e.Kind, e.Err)
	}
	return fmt.Sprintf("panel %s %s: %s", e.Op, e.ServerID, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, KindUnknown when err is not a panel error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// classifyTransport inspects a transport-level error from http.Client.Do.
func classifyTransport(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return KindConnRefused
	case errors.Is(err, syscall.ECONNRESET):
		return KindConnReset
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return KindHostUnreachable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnknown
}

// classifyStatus maps a non-2xx HTTP status to a Kind.
func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized:
		return KindUnauthorized
	case code == http.StatusForbidden:
		return KindForbidden
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500 && code <= 599:
		return KindServerError
	default:
		return KindUnknown
	}
}
