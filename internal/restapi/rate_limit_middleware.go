package restapi

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"starnav.teamgannon.org/internal/clock"
	"starnav.teamgannon.org/internal/models"
)

const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per API key with a token bucket per key.
type RateLimitMiddleware struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRateLimitMiddleware allows requests requests per interval for each key,
// with bursts of the same size. A non-positive requests disables limiting.
func NewRateLimitMiddleware(requests int, interval time.Duration) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limit:    rate.Inf,
		burst:    math.MaxInt32,
		limiters: make(map[string]*clientLimiter),
		stop:     make(chan struct{}),
	}
	if requests > 0 && interval > 0 {
		m.limit = rate.Every(interval / time.Duration(requests))
		m.burst = requests
	}

	m.wg.Add(1)
	go m.cleanup()
	return m
}

func (m *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.allow(r.URL.Query().Get("key")) {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				writeJSON(w, r, slog.Default(), http.StatusTooManyRequests,
					models.NewResponse(http.StatusTooManyRequests, nil, "rate limit exceeded", clock.RealClock{}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// cleanup forgets keys that have been idle for a while.
func (m *RateLimitMiddleware) cleanup() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			for key, cl := range m.limiters {
				if time.Since(cl.lastSeen) > limiterIdleTimeout {
					delete(m.limiters, key)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (m *RateLimitMiddleware) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
}
