package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics records per-route request metrics.
// monitoring.Metrics satisfies it.
type HTTPMetrics interface {
	ActiveRequestsInc(path, method string)
	ActiveRequestsDec(path, method string)
	ObserveRequest(path, method string, status int, duration time.Duration)
}

// ObservabilityMiddleware records request totals, latency and in-flight requests.
// Metrics are labeled with the route template, not the raw path, to keep cardinality low.
// ObservabilityMiddleware 记录请求总数、延迟以及进行中的请求数。
// 指标使用路由模板而非原始路径作为标签。
func ObservabilityMiddleware(metrics HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		method := c.Request.Method

		metrics.ActiveRequestsInc(path, method)
		defer metrics.ActiveRequestsDec(path, method)

		c.Next()

		metrics.ObserveRequest(path, method, c.Writer.Status(), time.Since(start))
	}
}
