package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract-api/internal/shared/server/respond"
)

type verifierFunc func(string) (string, error)

func (f verifierFunc) Verify(token string) (string, error) { return f(token) }

var acceptGood = verifierFunc(func(token string) (string, error) {
	if token == "good" {
		return "partner-gateway", nil
	}
	return "", errors.New("invalid token")
})

func TestBearerRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty token", header: "Bearer    "},
		{name: "lowercase scheme", header: "bearer good"},
		{name: "invalid token", header: "Bearer nope"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Bearer(acceptGood))
			router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			require.Equal(t, http.StatusUnauthorized, resp.Code)
			var env respond.Envelope
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
			assert.Equal(t, "EONDC0077", env.ErrorCode)
			assert.Equal(t, "Invalid Token", env.CustomerMessage)
			assert.False(t, env.Status)
		})
	}
}

func TestBearerSetsServiceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Bearer(acceptGood))

	var seen string
	router.POST("/x", func(c *gin.Context) {
		seen = ServiceIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "partner-gateway", seen)
}

func TestBearerAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Bearer(acceptGood))
	router.OPTIONS("/api/v1/documents/extract", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents/extract", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}
