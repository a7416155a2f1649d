package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, durations and in-flight requests. Paths
// are recorded as route templates; unmatched routes share one label.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		m.RequestStarted(method)
		start := time.Now()

		c.Next()

		m.RequestFinished(method)
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(method, path, c.Writer.Status(), time.Since(start))
	}
}
