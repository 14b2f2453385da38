package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecommerce-platform/identity-service/internal/api/metrics"
	"github.com/ecommerce-platform/identity-service/internal/core/domain"
)

// RBAC enforces role-based access control against the role injected by Auth.
// An empty allowedRoles list admits any authenticated caller.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := Role(c)
			if !ok {
				metrics.AuthzDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if len(allowed) == 0 {
				return next(c)
			}
			if _, ok := allowed[role]; !ok {
				metrics.AuthzDeniedTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
