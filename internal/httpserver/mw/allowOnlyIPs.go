package mw

import (
	"net/http"
	"net/netip"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/utils"
)

// AllowOnlyCIDRs allows only callers inside the given prefixes. An empty list
// does NOT filter (passthrough).
// trustProxy should be true when running behind a trusted reverse proxy.
func AllowOnlyCIDRs(allowed []netip.Prefix, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRs: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRs: initialized with %d rules, trustProxy=%v", len(allowed), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("request rejected by CIDR filter",
					logger.String("remote_ip", ip),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
