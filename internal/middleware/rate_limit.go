package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const visitorSweepInterval = time.Minute

// RateLimiter keeps one token bucket per client IP. The name labels the
// rejection metric so the submission, login and general limiters can be
// told apart.
type RateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

// NewRateLimiter allows limit requests per second per IP with the given
// burst. Idle visitors are swept every minute until ctx is cancelled.
func NewRateLimiter(ctx context.Context, name string, limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		name:     name,
		limit:    limit,
		burst:    burst,
		visitors: make(map[string]*rate.Limiter),
	}

	go rl.sweepLoop(ctx)

	return rl
}

func (rl *RateLimiter) visitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.visitors[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

func (rl *RateLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(visitorSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops visitors whose bucket has refilled completely.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, limiter := range rl.visitors {
		if limiter.Tokens() >= float64(rl.burst) {
			delete(rl.visitors, ip)
		}
	}
}

// retryAfter is the whole number of seconds until one token is available.
func (rl *RateLimiter) retryAfter() int {
	if rl.limit <= 0 {
		return 60
	}
	return int(math.Ceil(1/float64(rl.limit) - 1e-9))
}

// Middleware rejects over-limit requests with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.visitor(c.ClientIP()).Allow() {
			c.Next()
			return
		}

		metrics.RateLimitRejections.WithLabelValues(rl.name).Inc()
		c.Header("Retry-After", strconv.Itoa(rl.retryAfter()))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": "Too many requests. Please try again later.",
		})
	}
}
