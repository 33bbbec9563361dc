package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/metrics"
)

// PrometheusMetrics records request count and latency by route template, so
// object IDs do not explode label cardinality.
func PrometheusMetrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.RecordAPIRequest(ctx.Request.Method, route, ctx.Writer.Status(), time.Since(start))
	}
}
