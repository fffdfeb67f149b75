package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// MsgRateLimited is the in-band error text for a throttled request.
const MsgRateLimited = "Too many requests."

// idleBucketTTL is how long a bucket may go unused before the sweep drops it.
const idleBucketTTL = 10 * time.Minute

// KeyFunc names the bucket a request draws from.
type KeyFunc func(*gin.Context) string

// KeyByAPIKeyOrIP buckets authenticated callers by key fingerprint and
// everyone else by client IP. The prefixes keep the two namespaces apart.
func KeyByAPIKeyOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if h := APIKeyHash(c); h != "" {
			return "key:" + h
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	tokens *rate.Limiter
	used   time.Time
}

// RateLimiter hands out one token bucket per key. Buckets untouched for
// idle are swept at most once per idle period, on the lookup path.
type RateLimiter struct {
	limit rate.Limit
	burst int
	key   KeyFunc
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

// NewRateLimiter refills rps tokens per second up to burst (at least 1).
func NewRateLimiter(rps float64, burst int, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		key:     key,
		idle:    idleBucketTTL,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Sweep first, so a stale bucket for key is replaced rather than revived.
	if !now.Before(rl.nextSweep) {
		for k, b := range rl.buckets {
			if now.Sub(b.used) >= rl.idle {
				delete(rl.buckets, k)
			}
		}
		rl.nextSweep = now.Add(rl.idle)
	}

	b, found := rl.buckets[key]
	if !found {
		b = &bucket{tokens: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.used = now
	return b.tokens
}

// size reports the number of live buckets.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// IsRateBypass reports whether Idempotency flagged this request as a replay.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyRateBypass).(bool)
	return b
}

// Handler throttles requests per bucket. Replays skip the check. A throttled
// request gets Retry-After and the in-band rate_limited failure.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	retryAfter := strconv.Itoa(retryAfterSeconds(float64(rl.limit)))

	return func(c *gin.Context) {
		if IsRateBypass(c) || rl.bucketFor(rl.key(c)).Allow() {
			c.Next()
			return
		}
		httpThrottled.WithLabelValues(routeOf(c)).Inc()
		c.Header("Retry-After", retryAfter)
		Reject(c, CodeRateLimited, MsgRateLimited)
	}
}

// retryAfterSeconds is the time to refill one token, rounded up.
func retryAfterSeconds(rps float64) int {
	if rps <= 0 {
		return 60
	}
	return max(1, int(math.Ceil(1/rps)))
}
