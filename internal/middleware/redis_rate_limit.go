package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apexneuralecosystems/tracking-leads/internal/cache"
	"github.com/apexneuralecosystems/tracking-leads/internal/errors"
	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/metrics"
	"github.com/apexneuralecosystems/tracking-leads/internal/util"
)

// RedisRateLimit limits requests per client IP using a fixed Redis window.
// It is applied to the management API only; the pixel and redirect
// endpoints are never limited because the remote party is always owed its
// response. A Redis failure lets the request through: losing rate
// limiting is preferable to failing lead CRUD.
func RedisRateLimit(client *cache.RedisClient, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := client.IncrWithWindow(ctx, key, window)
		if err != nil {
			logger.Log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			metrics.Get().RateLimitExceededTotal.Inc()
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int64("requests", count),
				zap.Int("max_requests", maxRequests),
			)
			util.RespondWithAPIError(c, errors.RateLimited("rate limit exceeded"))
			c.Abort()
			return
		}

		c.Next()
	}
}
