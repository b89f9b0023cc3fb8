package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"recipebook/pkg/auth"
	pkgerrors "recipebook/pkg/errors"
)

// BearerAuthenticator validates the JWT bearer token of a request
type BearerAuthenticator struct {
	validator *auth.JWTValidator
	logger    *zap.Logger
}

// NewBearerAuthenticator creates an authenticator backed by a JWT validator
func NewBearerAuthenticator(validator *auth.JWTValidator, logger *zap.Logger) *BearerAuthenticator {
	return &BearerAuthenticator{
		validator: validator,
		logger:    logger,
	}
}

// Authenticate returns the token subject or an unauthorized error
func (a *BearerAuthenticator) Authenticate(r *http.Request, scheme string) (string, error) {
	token, err := extractToken(r)
	if err != nil {
		return "", pkgerrors.NewUnauthorizedError(err.Error())
	}

	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		a.logger.Debug("Rejected bearer token",
			zap.String("scheme", scheme),
			zap.String("path", r.URL.Path),
			zap.String("clientIP", getClientIP(r)),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return "", pkgerrors.NewUnauthorizedError("token has expired")
		default:
			return "", pkgerrors.NewUnauthorizedError("invalid token")
		}
	}

	return claims.Subject, nil
}

// extractToken reads the token from the Authorization header
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// getClientIP extracts the client IP address. RealIP has already rewritten
// RemoteAddr when the request came through a proxy.
func getClientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
