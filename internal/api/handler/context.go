package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/api/middleware"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

const dateLayout = "2006-01-02"

// actorFrom builds the caller from the claims injected by the Auth
// middleware. A missing role or user id means the middleware did not run.
func actorFrom(c echo.Context) (ports.Actor, error) {
	role, _ := c.Get(middleware.CtxRole).(domain.Role)
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if !role.Valid() || userID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ := c.Get(middleware.CtxUsername).(string)
	return ports.Actor{UserID: userID, Email: email, Role: role}, nil
}

func int64Param(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func uuidParam(c echo.Context, name string) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return id.String(), nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and truncates to the UTC day.
func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, domain.NewValidationError(field, field+" must be a date in the form YYYY-MM-DD")
		}
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
