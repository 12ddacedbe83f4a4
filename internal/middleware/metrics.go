package middleware

import (
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count, latency and in-flight requests per route
// pattern. The scrape endpoint itself is not counted.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.IncInFlight()
		defer m.DecInFlight()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// MetricsEndpoint serves the prometheus scrape handler.
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	h := m.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
