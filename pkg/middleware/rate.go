// Package middleware provides the HTTP middleware stack: request logging,
// panic recovery, CORS, per-IP rate limiting and session verification.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/asadazo/asadazo/pkg/response"
)

// window is a fixed-window counter for one client.
type window struct {
	count   int
	resetAt time.Time
}

// limiter holds the windows of one RateLimit instance so separate stacks
// (and tests) do not share counts.
type limiter struct {
	max    int
	length time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
	sweepAt time.Time
}

// allow reports whether ip may proceed and, when it may not, how long until
// its window resets.
func (l *limiter) allow(ip string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.sweepAt) {
		for k, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, k)
			}
		}
		l.sweepAt = now.Add(l.length)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.length)}
		l.clients[ip] = w
	}
	w.count++
	if w.count > l.max {
		return false, w.resetAt.Sub(now)
	}
	return true, 0
}

// RateLimit returns a middleware that limits each IP to max requests per
// window. Preflight requests are not counted. A max of zero or less
// disables limiting.
//
//	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))
func RateLimit(max int, length time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if max <= 0 {
			return next
		}
		l := &limiter{max: max, length: length, now: time.Now, clients: map[string]*window{}}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if ok, wait := l.allow(clientIP(r)); !ok {
				secs := int(wait.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max1(secs)))
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr without port.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
