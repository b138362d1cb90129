package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract-api/internal/shared/server/respond"
)

func TestRateLimitTokenHigherThanDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.FullPath() == "/api/v1/auth/token" {
			return "TOKEN"
		}
		return "DEFAULT"
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("serviceId", "partner-gateway")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: groupFor,
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 2},
			"TOKEN":   {Rate: 5, Burst: 10},
		},
	}))
	r.POST("/api/v1/auth/token", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/api/v1/documents/extract", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil))
		require.Equal(t, http.StatusOK, resp.Code, "token request %d", i+1)
	}

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", nil))
		require.Equal(t, http.StatusOK, resp.Code, "extract request %d", i+1)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 1},
		},
	}))
	r.GET("/api/v1/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil))
	require.Equal(t, http.StatusOK, resp1.Code)

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, resp2.Code)
	assert.Equal(t, "1", resp2.Header().Get("Retry-After"))

	var env respond.Envelope
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&env))
	assert.Equal(t, "EONDC0007", env.ErrorCode)
	assert.Equal(t, float64(1000), env.Info["retryAfterMs"])
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 1}

	ok, _ := limiter.Allow("k", rule)
	require.True(t, ok)
	ok, wait := limiter.Allow("k", rule)
	require.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	now = now.Add(500 * time.Millisecond)
	ok, _ = limiter.Allow("k", rule)
	assert.True(t, ok)
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 5, Burst: 20}

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, _ := limiter.Allow(ip+"|DEFAULT", rule)
		require.True(t, ok)
	}
	require.Equal(t, 3, limiter.Len())

	now = now.Add(5 * time.Minute)
	ok, _ := limiter.Allow("10.0.0.1|DEFAULT", rule)
	require.True(t, ok)
	assert.Equal(t, 3, limiter.Len())

	now = now.Add(6 * time.Minute)
	ok, _ = limiter.Allow("10.0.0.4|DEFAULT", rule)
	require.True(t, ok)
	assert.Equal(t, 2, limiter.Len())
}

func TestRateLimiterKeepsThrottledBucketUntilRefilled(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	slow := RateLimitRule{Rate: 0.01, Burst: 10}

	ok, _ := limiter.Allow("svc|DEFAULT", slow)
	require.True(t, ok)

	now = now.Add(11 * time.Minute)
	_, _ = limiter.Allow("other|DEFAULT", RateLimitRule{Rate: 5, Burst: 20})
	assert.Equal(t, 2, limiter.Len())
}
