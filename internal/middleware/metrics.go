package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrost/clinsched-api/internal/service"
)

// Metrics records per-request duration and count, labeled by the route
// template so path parameters don't explode label cardinality. The scrape
// endpoint itself is not measured.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
