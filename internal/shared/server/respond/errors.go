package respond

import (
	"github.com/gin-gonic/gin"

	"dot-triage/internal/shared/telemetry"
)

// ErrorBody is the flat error object returned by this service. Callers that
// orchestrate the triage flow (e.g. Power Automate) match on the Error string,
// so the shape is intentionally minimal.
type ErrorBody struct {
	Error       string `json:"error"`
	Details     string `json:"details,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
}

// Error sends an error response and logs it with request context.
func Error(c *gin.Context, status int, body ErrorBody) {
	fields := map[string]any{
		"status":     status,
		"error":      body.Error,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if body.Details != "" {
		fields["details"] = body.Details
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, body)
}
