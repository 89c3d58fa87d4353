package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
)

// GinLogger logs HTTP requests with structured fields, replacing
// gin.Logger.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		clientIP := c.ClientIP()

		c.Next()

		statusCode := c.Writer.Status()
		latency := time.Since(startTime)

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("client_ip", clientIP),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			fields = append(fields, logger.WithRequestID(requestID))
		}

		switch {
		case statusCode >= 500:
			logger.Log.Error("request", fields...)
		case statusCode >= 400:
			logger.Log.Warn("request", fields...)
		default:
			logger.Log.Info("request", fields...)
		}
	}
}
