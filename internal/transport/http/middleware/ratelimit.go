package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type visitor struct {
	windowStart time.Time
	count       int
}

// RateLimiter limits requests per client IP over a one-minute window.
type RateLimiter struct {
	mu                sync.Mutex
	visitors          map[string]*visitor
	requestsPerMinute int
}

// NewRateLimiter creates a rate limiter allowing requestsPerMinute per IP.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		visitors:          make(map[string]*visitor),
		requestsPerMinute: requestsPerMinute,
	}
}

// Limit wraps a handler with the per-IP limit.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(getIP(r)) {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok || time.Since(v.windowStart) > time.Minute {
		l.visitors[ip] = &visitor{windowStart: time.Now(), count: 1}
		return true
	}

	if v.count >= l.requestsPerMinute {
		return false
	}

	v.count++
	return true
}

// StartCleanup evicts idle visitor entries until stop is closed.
func (l *RateLimiter) StartCleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.mu.Lock()
				for ip, v := range l.visitors {
					if time.Since(v.windowStart) > 5*time.Minute {
						delete(l.visitors, ip)
					}
				}
				l.mu.Unlock()
			}
		}
	}()
}

// getIP extracts the client IP, honoring proxy headers.
func getIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
