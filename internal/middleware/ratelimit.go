package middleware

import (
	"sync"
	"time"

	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter holds a token bucket and last-seen time per IP.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is the general per-IP token bucket in front of /api.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rps      rate.Limit
	burst    int
	refill   time.Duration
	now      func() time.Time
}

// NewRateLimiter allows max requests per window per IP, refilled evenly.
// A non-positive max disables the limit.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rps, refill := rate.Inf, time.Duration(0)
	if max > 0 && window > 0 {
		rps, refill = rate.Every(window/time.Duration(max)), window
	}
	return &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rps,
		burst:    max,
		refill:   refill,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.limiters[ip]
	if !exists {
		v = &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Sweep drops buckets not seen for a full refill period and returns how many
// were removed. Such a bucket is full again, so a new one is equivalent.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.refill)
	n := 0
	for ip, v := range rl.limiters {
		if v.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
			n++
		}
	}
	return n
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			response.TooManyRequests(c, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
