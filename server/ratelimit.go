package server

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

const defaultRequestsPerHour = 60

// ipLimiter holds one token bucket per source address, created lazily.
// Tokens refill continuously at the hourly rate with a burst of the full
// hourly quota.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPLimiter(requestsPerHour int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(requestsPerHour) / 3600.0),
		burst:    requestsPerHour,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// clientIP extracts the source address, ignoring the port. Proxy headers are
// deliberately not trusted here; terminate them upstream.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
