package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/telemetry"
)

// Envelope is the uniform error body returned for every non-2xx response.
type Envelope struct {
	ErrorCode       string         `json:"errorCode"`
	CustomerMessage string         `json:"customerMessage"`
	Code            string         `json:"code"`
	Status          bool           `json:"status"`
	DebugInfo       map[string]any `json:"debugInfo,omitempty"`
	Info            map[string]any `json:"info,omitempty"`
}

// ErrorEnvelope builds a failure envelope.
func ErrorEnvelope(code, message string, debug map[string]any) Envelope {
	return Envelope{
		ErrorCode:       code,
		CustomerMessage: message,
		Code:            apperr.CodeNone,
		Status:          false,
		DebugInfo:       debug,
	}
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, debug map[string]any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if serviceID := c.GetString("serviceId"); serviceID != "" {
		fields["service_id"] = serviceID
	}
	if debug != nil {
		fields["debug"] = debug
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorEnvelope(code, message, debug))
}

// Fail renders err through the envelope. Client-facing failures carry a fixed
// message only; server failures add the raw error text as debug info.
func Fail(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr == nil {
		appErr = apperr.Wrap(apperr.KindUnknown, "unexpected error", errors.New("nil error"))
	}
	status := appErr.HTTPStatus()

	var debug map[string]any
	if status >= http.StatusInternalServerError {
		debug = map[string]any{"error": appErr.Error()}
	}
	Error(c, status, appErr.Code(), appErr.Message, debug)
}

// Unauthorized renders the fixed invalid-token response.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, apperr.CodeAuthError, "Invalid Token", nil)
}

// TooManyRequests renders a 429 with the wait hint in info.
func TooManyRequests(c *gin.Context, retryAfterMs int) {
	env := ErrorEnvelope(apperr.CodeInvalidRequest, "Too many requests", nil)
	env.Info = map[string]any{"retryAfterMs": retryAfterMs}
	telemetry.Warn("http.rate_limited", map[string]any{
		"path":           c.Request.URL.Path,
		"request_id":     c.GetString("requestId"),
		"service_id":     c.GetString("serviceId"),
		"retry_after_ms": retryAfterMs,
	})
	c.AbortWithStatusJSON(http.StatusTooManyRequests, env)
}
