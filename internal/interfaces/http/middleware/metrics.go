package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records HTTP request metrics. *metrics.Collector satisfies it.
type RequestObserver interface {
	RequestStarted()
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Metrics records request count, latency and in-flight requests. The route
// label is the matched route template so ids do not explode cardinality.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		observer.RequestStarted()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		observer.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
