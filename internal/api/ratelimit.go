package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sellerscope/sellerscope/internal/log"
)

const (
	throttleSweepEvery = 5 * time.Minute
	throttleIdleEvict  = 10 * time.Minute
)

// ipThrottle keeps one token bucket per client IP. Buckets start full at
// burst and refill at refill tokens per second. Entries idle longer than
// throttleIdleEvict are dropped during the periodic sweep, which piggybacks
// on admit so no background goroutine is needed.
type ipThrottle struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	refill    rate.Limit
	burst     int
	nextSweep time.Time
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newIPThrottle(refill float64, burst int) *ipThrottle {
	return &ipThrottle{
		buckets:   make(map[string]*ipBucket),
		refill:    rate.Limit(refill),
		burst:     burst,
		nextSweep: time.Now().Add(throttleSweepEvery),
	}
}

// admit consumes one token for ip, reporting whether the request may proceed.
func (t *ipThrottle) admit(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.After(t.nextSweep) {
		for key, b := range t.buckets {
			if now.Sub(b.seen) > throttleIdleEvict {
				delete(t.buckets, key)
			}
		}
		t.nextSweep = now.Add(throttleSweepEvery)
	}

	b, ok := t.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(t.refill, t.burst)}
		t.buckets[ip] = b
	}
	b.seen = now
	return b.lim.Allow()
}

// rateLimitMiddleware rejects clients that exhaust their bucket with 429 and
// a Retry-After hint.
func rateLimitMiddleware(t *ipThrottle, trustProxy bool, logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)
			if !t.admit(ip) {
				logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path, "method", r.Method)
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the address keyed by the throttle. Proxy headers count
// only when trustProxy is set, and only when they parse as real IPs, so a
// forged header cannot mint fresh buckets. X-Real-IP wins over the first
// X-Forwarded-For hop; everything else falls back to the connection address.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		candidates := []string{r.Header.Get("X-Real-IP")}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			candidates = append(candidates, first)
		}
		for _, c := range candidates {
			if ip := net.ParseIP(strings.TrimSpace(c)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
