package middleware

import (
	"context"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling returns a middleware that attaches route and method pprof labels
// to the request so continuous profiles can be sliced per endpoint.
// Requests matching no route are left unlabeled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelRoute:  route,
			telemetry.ProfilingLabelMethod: c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
