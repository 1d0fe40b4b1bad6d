package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-IP counter. It guards abuse-prone
// public routes (auth, contact form); authenticated traffic goes
// unthrottled.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	started time.Time
	hits    int
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
	go rl.sweep()
	return rl
}

// sweep drops windows that have fully expired so the map does not grow
// with one entry per IP forever.
func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(rl.period)
		rl.mu.Lock()
		for ip, w := range rl.windows {
			if time.Since(w.started) > rl.period {
				delete(rl.windows, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || time.Since(w.started) > rl.period {
		rl.windows[ip] = &window{started: time.Now(), hits: 1}
		return true
	}
	w.hits++
	return w.hits <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// RealIP runs earlier in the chain, so RemoteAddr is trustworthy.
		if !rl.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
