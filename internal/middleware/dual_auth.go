package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/domain"
)

// DualAuthMiddleware provides middleware that accepts both JWT and API token authentication
type DualAuthMiddleware struct {
	jwtAuth      *AuthMiddleware
	apiTokenAuth *APITokenAuthMiddleware
}

// NewDualAuthMiddleware creates a new DualAuthMiddleware
func NewDualAuthMiddleware(jwtAuth *AuthMiddleware, apiTokenAuth *APITokenAuthMiddleware) *DualAuthMiddleware {
	return &DualAuthMiddleware{
		jwtAuth:      jwtAuth,
		apiTokenAuth: apiTokenAuth,
	}
}

// Authenticate returns an Echo middleware that routes by token format:
// API tokens carry their prefix, everything else is treated as a JWT
func (m *DualAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			var token string

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				token = parts[1]
			} else if strings.HasPrefix(authHeader, domain.APITokenPrefix) {
				// Accept API tokens without Bearer prefix (for Swagger/simple clients)
				token = authHeader
			} else {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			if strings.HasPrefix(token, domain.APITokenPrefix) {
				log.Debug().Msg("Attempting API token authentication")
				return m.apiTokenAuth.authenticateWithToken(token)(next)(c)
			}

			log.Debug().Msg("Attempting JWT authentication")
			return m.jwtAuth.Authenticate()(next)(c)
		}
	}
}

// JWTOnly returns a middleware that only accepts JWT authentication
// Use this for routes that should not allow API token access
func (m *DualAuthMiddleware) JWTOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			token := parts[1]

			if strings.HasPrefix(token, domain.APITokenPrefix) {
				log.Debug().Msg("API token rejected on JWT-only route")
				return unauthorizedError(c, "This endpoint requires session authentication")
			}

			return m.jwtAuth.Authenticate()(next)(c)
		}
	}
}

// APITokenOnly returns a middleware that only accepts API token authentication
func (m *DualAuthMiddleware) APITokenOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			token := parts[1]

			if !strings.HasPrefix(token, domain.APITokenPrefix) {
				log.Debug().Msg("Non-API token rejected on API-token-only route")
				return unauthorizedError(c, "This endpoint requires API token authentication")
			}

			return m.apiTokenAuth.authenticateWithToken(token)(next)(c)
		}
	}
}
