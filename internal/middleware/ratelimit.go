package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/simp-lee/petadmin/internal/pkg"
)

const limiterStaleAfter = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket limiter keyed by client IP.
// A janitor goroutine drops clients idle for ten minutes until Stop is
// called.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*limiterEntry

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRateLimiter returns a limiter allowing rps requests per second per
// client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	l := &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		stop:    make(chan struct{}),
	}
	go l.janitor(time.Minute)
	return l
}

func (l *RateLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now().Add(-limiterStaleAfter))
		case <-l.stop:
			return
		}
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.entries[key] = &limiterEntry{limiter: lim, lastSeen: time.Now()}
	return lim
}

func (l *RateLimiter) cleanup(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// Stop ends the janitor. It is safe to call more than once.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Handler returns the gin middleware. Preflight requests and /health are
// never limited. Rejected requests get 429 with a Retry-After header.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		lim := l.get(c.ClientIP())
		if !lim.Allow() {
			retry := time.Second
			if l.limit > 0 {
				retry = max(time.Duration(float64(time.Second)/float64(l.limit)), time.Second)
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, pkg.Response{
				IsSuccess: false,
				Code:      http.StatusTooManyRequests,
				Message:   "too many requests",
			})
			return
		}

		c.Next()
	}
}
