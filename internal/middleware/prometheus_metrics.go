package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apexneuralecosystems/tracking-leads/internal/metrics"
)

// Metrics collects HTTP request counts and latencies for Prometheus.
// The route template (c.FullPath) is used as the path label so tracking
// ids don't explode label cardinality.
func Metrics() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(startTime).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	}
}
