package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/metrics"
)

// Metrics middleware records request counts and latency per route
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
