package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docextract-api/internal/shared/apperr"
)

// CredentialTTL is the fixed validity window of an issued credential.
const CredentialTTL = 90 * 24 * time.Hour

// ExpiresAtLayout renders credential expiry in UTC with second precision.
const ExpiresAtLayout = "2006-01-02T15:04:05Z"

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Credential is a freshly minted bearer token.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Authority mints and verifies credentials bound to exactly one service identity.
type Authority struct {
	secret    []byte
	method    jwt.SigningMethod
	serviceID string
	now       func() time.Time
}

// NewAuthority validates the signing configuration. Only HMAC algorithms are accepted.
func NewAuthority(secret, algorithm, serviceID string) (*Authority, error) {
	method, ok := jwt.GetSigningMethod(strings.ToUpper(strings.TrimSpace(algorithm))).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	return &Authority{
		secret:    []byte(secret),
		method:    method,
		serviceID: serviceID,
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (a *Authority) WithClock(now func() time.Time) *Authority {
	cp := *a
	cp.now = now
	return &cp
}

// ServiceID returns the one identity this authority recognises.
func (a *Authority) ServiceID() string {
	return a.serviceID
}

// Issue mints a credential for serviceID when it matches the configured identity.
func (a *Authority) Issue(serviceID string) (Credential, error) {
	if a.serviceID == "" || serviceID != a.serviceID {
		return Credential{}, apperr.Auth("Invalid service_id")
	}
	if len(a.secret) == 0 {
		return Credential{}, apperr.Signing("Failed to generate token", errMissingSecret)
	}

	issuedAt := a.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(CredentialTTL)
	claims := jwt.RegisteredClaims{
		Subject:   serviceID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(a.method, claims).SignedString(a.secret)
	if err != nil {
		return Credential{}, apperr.Signing("Failed to generate token", err)
	}
	return Credential{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, expiry and subject. Every failure collapses into ErrInvalidToken.
func (a *Authority) Verify(token string) (string, error) {
	if strings.TrimSpace(token) == "" || len(a.secret) == 0 || a.serviceID == "" {
		return "", ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{a.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(a.serviceID),
		jwt.WithTimeFunc(a.now),
	)

	var claims jwt.RegisteredClaims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// FormatExpiresAt renders t for API responses.
func FormatExpiresAt(t time.Time) string {
	return t.UTC().Format(ExpiresAtLayout)
}
