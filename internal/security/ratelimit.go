// Package security holds request throttling for the backend.
package security

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter implements a fixed window token bucket per caller key
type RateLimiter struct {
	callers map[string]*bucket
	mu      sync.Mutex
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing rate requests per window for each key.
// Stale keys are swept every window until stop is closed.
func NewRateLimiter(rate int, window time.Duration, stop <-chan struct{}) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
	go rl.sweep(stop)
	return rl
}

// Allow consumes a token for key and reports whether the request may proceed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.callers[key]
	if !ok || now.Sub(b.lastRefill) >= rl.window {
		b = &bucket{tokens: rl.rate, lastRefill: now}
		rl.callers[key] = b
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) sweep(stop <-chan struct{}) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, b := range rl.callers {
				if now.Sub(b.lastRefill) > rl.window*2 {
					delete(rl.callers, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// ClientIP extracts the client address from the request, preferring the
// first hop of X-Forwarded-For when behind a proxy
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
