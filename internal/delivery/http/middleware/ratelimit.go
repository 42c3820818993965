package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"eventsignup/config"
	h "eventsignup/internal/delivery/http/helpers"
)

const rateLimitMessage = "Zu viele Anfragen. Bitte versuchen Sie es später erneut."

// visitor tracks one client's limiter and its last use for pruning.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP using a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

// NewRateLimiter builds a per-IP limiter from the configured window. A
// visitor that stays idle for ten windows is forgotten.
func NewRateLimiter(cfg config.RateLimit) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:    cfg.Burst,
	}
	go rl.prune(10 * cfg.Window)
	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *RateLimiter) prune(maxIdle time.Duration) {
	for {
		time.Sleep(maxIdle / 2)
		cutoff := time.Now().Add(-maxIdle)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Wrap applies the limiter to a single handler.
func (rl *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			tooManyRequests(w, r)
			return
		}
		next(w, r)
	}
}

// Handler applies the limiter to a whole handler tree.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			tooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	if h.WantsJSON(r) {
		h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyReqs, rateLimitMessage)
		return
	}
	http.Error(w, rateLimitMessage, http.StatusTooManyRequests)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
