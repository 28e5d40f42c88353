package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	bucketSweepInterval = 5 * time.Minute
	bucketTTL           = 10 * time.Minute
)

// RateLimiter is a token-bucket throttle keyed by caller address. It protects
// the public booking endpoints from a voice agent stuck in a retry loop.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      float64 // tokens per second
	burst     float64
	nextSweep time.Time

	now func() time.Time // test hook
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows rate requests/sec with the given burst per caller.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
	rl.nextSweep = rl.now().Add(bucketSweepInterval)
	return rl
}

// Allow spends one token from key's bucket. When the spend is refused the
// second return says how long until a token accrues.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.After(rl.nextSweep) {
		rl.sweepLocked(now)
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst}
		rl.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.seen).Seconds() * rl.rate
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
	}
	b.seen = now

	if b.tokens < 1 {
		var wait time.Duration
		if rl.rate > 0 {
			wait = time.Duration((1 - b.tokens) / rl.rate * float64(time.Second))
		}
		return false, wait
	}
	b.tokens--
	return true, 0
}

// sweepLocked drops buckets idle long enough to have refilled completely.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-bucketTTL)
	for key, b := range rl.buckets {
		if b.seen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
	rl.nextSweep = now.Add(bucketSweepInterval)
}

// RateLimit returns middleware that rejects callers over the limit with 429
// and a Retry-After hint sized to the actual refill time.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Allow(clientKey(r))
			if !ok {
				retry := int(math.Ceil(wait.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the address chi's RealIP middleware resolved; the raw
// RemoteAddr keeps a caller's bucket stable when that middleware is absent.
func clientKey(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
