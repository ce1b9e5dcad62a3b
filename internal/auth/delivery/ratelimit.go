package delivery

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// AuthRateWindow and AuthRateMax bound register and login per client IP
	AuthRateWindow = 15 * time.Minute
	AuthRateMax    = 100
)

// IPRateLimiter keeps one token bucket per client IP. A bucket left idle for
// a whole window has refilled, so it is dropped on the next sweep.
type IPRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows max requests per window for each IP, refilling evenly
func NewIPRateLimiter(window time.Duration, max int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Every(window / time.Duration(max)),
		burst:     max,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether ip may make another request now
func (l *IPRateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(now)
	}
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for at least a window. Callers hold l.mu.
func (l *IPRateLimiter) sweep(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.window {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the limit with 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			c.Abort()
			return
		}
		c.Next()
	}
}
