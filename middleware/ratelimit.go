package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// Rate is the number of requests per second per key.
	Rate int

	// Burst is the maximum burst size.
	Burst int

	// KeyFunc extracts the limiting key from the request.
	// Optional. Defaults to the client IP.
	KeyFunc func(c echo.Context) string

	// ErrorHandler handles rejected requests.
	ErrorHandler func(c echo.Context) error
}

// DefaultRateLimitConfig returns a default rate limit configuration.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Rate:  10,
		Burst: 20,
		KeyFunc: func(c echo.Context) string {
			return c.RealIP()
		},
		ErrorHandler: func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	}
}

// limiterEntry holds a rate limiter and its last access time.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// memoryStore keeps one limiter per key with periodic expiry.
type memoryStore struct {
	rate     int
	burst    int
	ttl      time.Duration
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	lastScan time.Time
}

func newMemoryStore(r, b int) *memoryStore {
	return &memoryStore{
		rate:     r,
		burst:    b,
		ttl:      10 * time.Minute,
		limiters: make(map[string]*limiterEntry),
		lastScan: time.Now(),
	}
}

func (s *memoryStore) allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(s.rate), s.burst),
		}
		s.limiters[key] = entry
	}
	entry.lastAccess = now

	// Opportunistic expiry instead of a background goroutine; the store
	// lives as long as the process.
	if now.Sub(s.lastScan) > s.ttl {
		for k, e := range s.limiters {
			if now.Sub(e.lastAccess) > s.ttl {
				delete(s.limiters, k)
			}
		}
		s.lastScan = now
	}
	s.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// RateLimit returns a middleware limiting each client to r requests per
// second with burst b.
func RateLimit(r, b int) echo.MiddlewareFunc {
	cfg := DefaultRateLimitConfig()
	cfg.Rate = r
	cfg.Burst = b
	return RateLimitWithConfig(cfg)
}

// RateLimitWithConfig returns a RateLimit middleware with config.
func RateLimitWithConfig(config *RateLimitConfig) echo.MiddlewareFunc {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultRateLimitConfig().KeyFunc
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultRateLimitConfig().ErrorHandler
	}

	store := newMemoryStore(config.Rate, config.Burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.allow(config.KeyFunc(c)) {
				return config.ErrorHandler(c)
			}
			return next(c)
		}
	}
}
