package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"dot-triage/internal/shared/server/respond"
	"dot-triage/internal/shared/telemetry"
)

// Recovery recovers from panics and returns the generic error response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				reqID := RequestIDFromContext(c)
				telemetry.Error("panic", map[string]any{
					"request_id": reqID,
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Error(c, http.StatusInternalServerError, respond.ErrorBody{
					Error: "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
