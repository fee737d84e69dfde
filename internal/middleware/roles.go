package middleware

import (
	"net/http"

	"dinemart/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(allowed ...string) echo.MiddlewareFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing role")
			}
			if _, permitted := allowedSet[role]; !permitted {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
