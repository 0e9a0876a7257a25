package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/utils"
)

// RateLimitConfig bounds how often one caller may hit a mutating route.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool
	Now               func() time.Time // for testing, defaults to time.Now
}

type bucket struct {
	tokens   float64
	lastRef  time.Time
	lastSeen time.Time
}

// limiter is a token bucket per client IP.
type limiter struct {
	cfg       RateLimitConfig
	rate      float64 // tokens per second
	capacity  float64
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		rate:      float64(cfg.RefillPerIPPerMin) / 60.0,
		capacity:  float64(cfg.Burst),
		buckets:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// allow takes one token for key. On refusal it returns the seconds until
// the next token.
func (l *limiter) allow(key string, now time.Time) (ok bool, remaining int, retryAfterSec int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval || len(l.buckets) >= l.cfg.MaxEntries {
		l.sweepLocked(now)
	}

	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: l.capacity, lastRef: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if elapsed := now.Sub(b.lastRef).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
		b.lastRef = now
	}

	if b.tokens >= 1.0 {
		b.tokens--
		return true, int(math.Floor(b.tokens)), 0
	}

	sec := int(math.Ceil((1.0 - b.tokens) / l.rate))
	if sec < 1 {
		sec = 1
	}
	return false, 0, sec
}

func (l *limiter) sweepLocked(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.IdleTTL {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit answers 429 with Retry-After once a caller's bucket is empty.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, l.cfg.TrustProxy)

			ok, remaining, retry := l.allow(key, l.cfg.Now())
			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
