package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenauth "docextract-api/internal/auth"
	"docextract-api/internal/shared/auth"
	"docextract-api/internal/shared/config"
)

type rejectAll struct{}

func (rejectAll) Verify(string) (string, error) { return "", errors.New("nope") }

func newTestRouter(t *testing.T, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authority, err := auth.NewAuthority("secret", "HS256", "svc")
	require.NoError(t, err)
	return NewRouter(RouterDeps{
		Config: config.Config{
			APIPrefix:      "/api/v1",
			ArchiveBackend: "http",
			RateLimitRPS:   0.001,
			RateLimitBurst: burst,
		},
		Verifier:     rejectAll{},
		TokenHandler: tokenauth.NewHandler(authority),
	})
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}

func TestUnknownRouteRendersEnvelope(t *testing.T) {
	r := newTestRouter(t, 5)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	require.Equal(t, http.StatusNotFound, resp.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "EONDC0007", env["errorCode"])
	assert.Equal(t, false, env["status"])
}

func TestTokenRouteIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 1)

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"serviceId":"svc"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	require.Equal(t, http.StatusOK, call().Code)
	limited := call()
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
}

func TestHealthNeedsNoCredential(t *testing.T) {
	r := newTestRouter(t, 5)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"ok":true`)
}
