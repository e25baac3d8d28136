package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/httputil"
)

// limiterStore holds one token bucket per key and forgets buckets idle for an hour.
type limiterStore[K comparable] struct {
	limiters sync.Map // map[K]*limiterEntry
	rps      float64
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newLimiterStore[K comparable](ctx context.Context, rps float64, burst int) *limiterStore[K] {
	s := &limiterStore[K]{rps: rps, burst: burst}
	go s.cleanupStale(ctx, 5*time.Minute, time.Hour)
	return s
}

func (s *limiterStore[K]) getLimiter(key K) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

func (s *limiterStore[K]) cleanupStale(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-maxIdle)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// tooManyRequests writes a 429 with a Retry-After header derived from the limiter.
func tooManyRequests(c *gin.Context, limiter *rate.Limiter, message string) {
	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: message,
	})
	c.Abort()
}

// RateLimitMiddleware enforces per-user rate limiting on authenticated requests.
// It must run after AuthenticationMiddleware. The idle-bucket sweeper stops with ctx.
//
// Returns 429 Too Many Requests with a Retry-After header when the bucket is empty.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[uuid.UUID](ctx, rps, burst)

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no principal in context")
			httputil.HandleErrorGin(c, authDomain.ErrMissingToken, logger)
			c.Abort()
			return
		}

		limiter := store.getLimiter(principal.UserID)
		if !limiter.Allow() {
			logger.Debug("rate limit exceeded", slog.String("user_id", principal.UserID.String()))
			tooManyRequests(c, limiter, "Too many requests. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}

// IPRateLimitMiddleware enforces per-IP rate limiting on the unauthenticated
// credential endpoints (register, login, refresh) to slow down credential stuffing.
// c.ClientIP() honours X-Forwarded-For and X-Real-IP according to gin's trusted proxies.
func IPRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[string](ctx, rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		limiter := store.getLimiter(clientIP)
		if !limiter.Allow() {
			logger.Debug("credential endpoint rate limit exceeded", slog.String("client_ip", clientIP))
			tooManyRequests(c, limiter, "Too many requests from this IP. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}
