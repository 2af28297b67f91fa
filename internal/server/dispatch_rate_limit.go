package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sathi/internal/observability/logger"
	"go.uber.org/zap"
)

const rateLimitReasonResourceRate = "resource-rate"

// DispatchRateLimit sheds dispatch bursts per resource before they reach
// the row lock. A limiter outage fails closed with 503.
func (s *Server) DispatchRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.dispatchLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		resourceID := strings.TrimSpace(c.Param("resource_id"))

		res, err := s.dispatchLimiter.Allow(ctx, resourceID)
		if err != nil {
			logger.FromContext(ctx).Warn("dispatch rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			logger.FromContext(ctx).Warn("dispatch rate limit exceeded",
				zap.String("reason", rateLimitReasonResourceRate),
				zap.String("endpoint", endpoint),
				zap.String("resource_id", resourceID),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonResourceRate)

			c.Header("Retry-After", retryAfterSeconds(res.RetryAfter))
			c.Header("X-Rate-Limited-Reason", rateLimitReasonResourceRate)
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

// retryAfterSeconds rounds up so clients never retry early.
func retryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
