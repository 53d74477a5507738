// Package ratelimit throttles clients with a fixed per-minute request window.
package ratelimit

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
)

// Limiter counts requests per client key. Counters live in a TTL cache, so a
// client's window resets one minute after its first request.
type Limiter struct {
	mu      sync.Mutex
	clients *cache.LRU[*counter]

	requestsPerMinute int
	hits              int64
}

type counter struct {
	requests int
}

type Config struct {
	RequestsPerMinute int
	// MaxClients bounds the tracked keys; the least recently seen are dropped.
	MaxClients int
	Window     time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		Window:            time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	return &Limiter{
		clients:           cache.NewLRU[*counter](config.MaxClients, config.Window),
		requestsPerMinute: config.RequestsPerMinute,
	}
}

// WithClock swaps the time source; used by tests.
func (rl *Limiter) WithClock(now func() time.Time) *Limiter {
	rl.clients.WithClock(now)
	return rl
}

// Allow checks if a request from the given client should be allowed
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients.Get(clientIP)
	if !ok {
		rl.clients.Set(clientIP, &counter{requests: 1})
		return true
	}
	c.requests++
	if c.requests > rl.requestsPerMinute {
		atomic.AddInt64(&rl.hits, 1)
		return false
	}
	return true
}

// Sweep drops expired windows; register the limiter with a cache.Janitor.
func (rl *Limiter) Sweep() int {
	return rl.clients.Sweep()
}

func (rl *Limiter) ActiveClients() int {
	return rl.clients.Len()
}

type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   atomic.LoadInt64(&rl.hits),
		ClientCount: int64(rl.clients.Len()),
	}
}

// Middleware rejects requests over the limit. Only methods listed in methods
// are counted; an empty list counts everything.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request), methods ...string) func(http.Handler) http.Handler {
	counted := make(map[string]bool, len(methods))
	for _, m := range methods {
		counted[m] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(counted) > 0 && !counted[r.Method] {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", "60")
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
