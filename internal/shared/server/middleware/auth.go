package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-api/internal/shared/server/respond"
)

const serviceIDKey = "serviceId"

// TokenVerifier checks a bearer credential and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Bearer rejects requests without a valid bearer credential and stores the
// verified service id in context.
func Bearer(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Unauthorized(c)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			respond.Unauthorized(c)
			return
		}

		serviceID, err := verifier.Verify(token)
		if err != nil {
			respond.Unauthorized(c)
			return
		}
		c.Set(serviceIDKey, serviceID)
		c.Next()
	}
}

// ServiceIDFromContext fetches the service id set by Bearer.
func ServiceIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(serviceIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
