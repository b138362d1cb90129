package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-api/internal/shared/apperr"
	sharedauth "docextract-api/internal/shared/auth"
	"docextract-api/internal/shared/metrics"
	"docextract-api/internal/shared/server/middleware"
	"docextract-api/internal/shared/server/respond"
	"docextract-api/internal/shared/telemetry"
)

// Handler issues bearer credentials to the configured service identity.
type Handler struct {
	authority *sharedauth.Authority
}

func NewHandler(authority *sharedauth.Authority) *Handler {
	return &Handler{authority: authority}
}

// RegisterRoutes attaches the token route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/token", h.token)
}

type tokenRequest struct {
	ServiceID string `json:"serviceId"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *Handler) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Wrap(apperr.KindInvalidInput, "Invalid request body", err))
		return
	}

	cred, err := h.authority.Issue(strings.TrimSpace(req.ServiceID))
	if err != nil {
		metrics.IncTokenIssued(metrics.OutcomeError)
		respond.Fail(c, err)
		return
	}

	metrics.IncTokenIssued(metrics.OutcomeSuccess)
	telemetry.Info("auth.token_issued", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"service_id": req.ServiceID,
		"expires_at": sharedauth.FormatExpiresAt(cred.ExpiresAt),
	})
	respond.OK(c, tokenResponse{
		Token:     cred.Token,
		ExpiresAt: sharedauth.FormatExpiresAt(cred.ExpiresAt),
	})
}
