package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecommerce-platform/identity-service/internal/api/metrics"
	"github.com/ecommerce-platform/identity-service/internal/core/domain"
	"github.com/ecommerce-platform/identity-service/internal/core/token"
)

// TokenParser is the slice of token.Codec the middleware needs.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// Auth validates the bearer token and injects the subject id and role into
// the request context. Every failure is a 401; the response never says
// which check failed.
func Auth(codec TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthzDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthzDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := codec.Parse(parts[1])
			if err != nil {
				metrics.AuthzDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims.SubjectID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// Role extracts the authenticated role injected by Auth.
func Role(c echo.Context) (domain.Role, bool) {
	role, ok := c.Get("role").(domain.Role)
	return role, ok
}

// UserID extracts the authenticated subject id injected by Auth.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get("user_id").(string)
	return id, ok
}
