package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tokenauth "docextract-api/internal/auth"
	"docextract-api/internal/documents"
	"docextract-api/internal/services/health"
	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/config"
	"docextract-api/internal/shared/metrics"
	"docextract-api/internal/shared/server/middleware"
	"docextract-api/internal/shared/server/respond"
)

const (
	rateGroupToken   = "TOKEN"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	TokenHandler    *tokenauth.Handler
	DocumentHandler *documents.Handler
	Health          *health.Service
	// FilesDir is served under /files when the local archive backend is active.
	FilesDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: rateGroupDefault,
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == deps.Config.APIPrefix+"/auth/token" {
				return rateGroupToken
			}
			return rateGroupDefault
		},
		Limiter: middleware.NewRateLimiter(nil),
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDefault: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
			rateGroupToken:   {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
		},
	})

	r.GET("/metrics", metrics.Handler())
	if deps.FilesDir != "" {
		r.Static("/files", deps.FilesDir)
	}

	api := r.Group(deps.Config.APIPrefix)
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(deps.Config.ArchiveBackend)
	}
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	if deps.TokenHandler != nil {
		deps.TokenHandler.RegisterRoutes(api.Group("", limit))
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api.Group("", middleware.Bearer(deps.Verifier), limit))
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, apperr.CodeInvalidRequest, "Resource not found", nil)
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
