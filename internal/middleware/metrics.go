package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"relation-service/internal/observability"
)

// unmatchedRoute keeps 404 probes from minting one label per raw path.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		observability.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
