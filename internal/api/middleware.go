// internal/api/middleware.go
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "crm-concierge/internal/common/errors"
	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/common/observability"
	"crm-concierge/internal/core/respond"
	"crm-concierge/internal/models"
)

// RateLimiter keeps one token bucket per caller. Callers are keyed by the
// identity query parameter when present, falling back to the client IP for
// body-carried identities.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(perSec, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(perSec),
		burst:    burst,
	}
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(r.rps, r.burst)
		r.limiters[key] = limiter
	}
	return limiter
}

// Middleware enforces the per-caller limit.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("mobile")
		if key == "" {
			key = c.ClientIP()
		}

		if !r.limiterFor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"error_code": "RATE_LIMITED",
				"message":    "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

// Recovery converts panics into the standard INTERNAL_ERROR envelope instead
// of gin's default plain 500.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"panic": rec,
				})
				resp := respond.Error(apperrors.NewInternalError(nil), models.ModeCustomer)
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID, honoring one the client already sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// Telemetry records request count and duration on the otel meter. A nil obs
// disables it, which tests use.
func Telemetry(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if obs == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		obs.RecordRequestProcessed(c.Request.Context(), status)
		obs.RecordRequestDuration(c.Request.Context(), time.Since(start), status)
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("request", map[string]interface{}{
			"requestId": c.GetString("request_id"),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
		})
	}
}
