package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yungbote/roadmap-backend/internal/observability"
)

// Routes kept out of the API series. Scrapes and probes would otherwise
// dominate the request counters.
var unmeteredRoutes = map[string]bool{
	"/metrics":     true,
	"/healthcheck": true,
}

// Metrics records API request count and latency by matched route, plus the
// in-flight gauge. Unmatched paths share one label. A nil m is a no-op.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if unmeteredRoutes[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		m.ApiInflightInc()
		defer m.ApiInflightDec()
		start := time.Now()
		c.Next()

		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
