package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorView struct {
	Status  int
	Message string
}

// NewHTTPErrorHandler renders failures as the error page. Unexpected errors
// are logged and shown with a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Something went wrong. Please try again later."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok && status < http.StatusInternalServerError {
				msg = m
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		if rerr := c.Render(status, "error", &Page{Title: http.StatusText(status), Data: errorView{Status: status, Message: msg}}); rerr != nil {
			_ = c.String(status, msg)
		}
	}
}
