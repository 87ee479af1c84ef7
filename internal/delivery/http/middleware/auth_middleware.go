// Package middleware contains the HTTP middlewares for the delivery layer.
package middleware

import (
	"strings"

	deliverycontext "enroll/internal/delivery/context"
	"enroll/internal/delivery/http/response"
	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware validates inbound bearer tokens and attaches the resulting
// principal to the request context.
type AuthMiddleware struct {
	verifier service.TokenVerifier
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(verifier service.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate validates the Authorization header and stores the principal.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Authorization header must carry a Bearer token")
		}

		principal, err := m.verifier.Verify(c.Request().Context(), tokenString)
		if err != nil {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Invalid or expired token")
		}

		ctx := deliverycontext.WithPrincipal(c.Request().Context(), principal)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRole gates a route on one of the principal's roles. It must be used
// after Authenticate.
func (m *AuthMiddleware) RequireRole(requiredRole entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := deliverycontext.GetPrincipal(c.Request().Context())
			if principal == nil {
				return response.Forbidden(c, domainerrors.ErrForbidden.ErrorCode(), "Permission denied: principal missing")
			}

			if !principal.HasRole(requiredRole) {
				return response.Forbidden(c, domainerrors.ErrForbidden.ErrorCode(), "Permission denied: requires '"+requiredRole.String()+"' role")
			}

			return next(c)
		}
	}
}
