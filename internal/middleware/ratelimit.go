package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter hands out one token bucket per authenticated user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[int64]*userLimiter
	now      func() time.Time
}

func NewUserRateLimiter(perSecond float64, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[int64]*userLimiter),
		now:      time.Now,
	}
}

func (l *UserRateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Sweep drops limiters that have been idle for longer than the TTL.
func (l *UserRateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-limiterIdleTTL)
	removed := 0
	for id, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
			removed++
		}
	}
	return removed
}

// Middleware rejects with 429 once the caller's bucket is empty. Requests
// without an authenticated user pass through untouched.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get("userID")
		if !ok {
			c.Next()
			return
		}
		userID, ok := val.(int64)
		if !ok {
			c.Next()
			return
		}
		if !l.Allow(userID) {
			abortWithError(c, http.StatusTooManyRequests, "too many requests", "rate_limited")
			return
		}
		c.Next()
	}
}
