package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/api/metrics"
	"github.com/agrienergy/connect/internal/core/domain"
)

// RBAC admits requests whose role claim is one of roles and rejects the rest
// with domain.ErrForbidden, which the error handler renders as 403. It reads
// the role stored by Auth, so it must be mounted after it.
func RBAC(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(domain.Role)
			if !role.Valid() || !permits(roles, role) {
				metrics.AuthorizationDenialsTotal.WithLabelValues(roleLabel(role)).Inc()
				return fmt.Errorf("%w: role %q may not access %s %s",
					domain.ErrForbidden, role, c.Request().Method, c.Path())
			}
			return next(c)
		}
	}
}

func permits(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func roleLabel(r domain.Role) string {
	if r == "" {
		return "none"
	}
	return string(r)
}
