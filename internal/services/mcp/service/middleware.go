package service

import (
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// requestLogger logs method, path, status and duration for every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("%s %s status=%d duration=%v request_id=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

const (
	// limiterIdleTTL is how long a peer's bucket survives without requests.
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepInterval bounds how often idle buckets are dropped.
	limiterSweepInterval = time.Minute
)

type peerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per TCP peer. Buckets idle for longer
// than limiterIdleTTL are swept on the next request after limiterSweepInterval.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*peerLimiter
	lastSweep time.Time

	rate  rate.Limit
	burst int
	now   func() time.Time
}

func newIPRateLimiter(r rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*peerLimiter),
		rate:     r,
		burst:    burst,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		l.sweepLocked(now)
	}
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &peerLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (l *ipRateLimiter) sweepLocked(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Limit rejects requests over the per-peer budget with 429 and a JSON-RPC style
// error body. It must run before middleware.RealIP so forwarding headers can't
// pick the bucket.
func (l *ipRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.limiter(ip).Allow() {
			log.Printf("Rate limit exceeded: ip=%s path=%s", ip, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"rate limit exceeded"},"id":null}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the host part of the TCP peer address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
