package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterStore keeps one token bucket per client IP. Buckets idle for
// longer than the janitor's idle period are dropped.
type RateLimiterStore struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiterStore(rps float64, burst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (s *RateLimiterStore) GetLimiter(client string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	cl, exists := s.limiters[client]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[client] = cl
	}
	cl.lastSeen = s.now()
	return cl.limiter
}

func (s *RateLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// Sweep drops the buckets of clients not seen for idle and returns how
// many were removed.
func (s *RateLimiterStore) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for client, cl := range s.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(s.limiters, client)
			removed++
		}
	}
	return removed
}

// Janitor sweeps idle buckets every interval until ctx is cancelled.
func (s *RateLimiterStore) Janitor(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				slog.Debug("idle rate limiters removed", "count", n, "active", s.Len())
			}
		}
	}
}

func RateLimitMiddleware(store *RateLimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.GetLimiter(c.ClientIP()).Allow() {
			sendError(c, http.StatusTooManyRequests, CodeRateLimited,
				"rate limit exceeded", "Too many requests, slow down")
			return
		}
		c.Next()
	}
}
