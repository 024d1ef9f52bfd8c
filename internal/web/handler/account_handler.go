package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/web/apiclient"
	"github.com/agrienergy/connect/internal/web/session"
)

// AccountHandler serves sign-in, sign-out and access denied pages.
type AccountHandler struct {
	bridge *session.Bridge
	log    zerolog.Logger
}

func NewAccountHandler(bridge *session.Bridge, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{bridge: bridge, log: log}
}

// LoginForm handles GET /Account/Login.
func (h *AccountHandler) LoginForm(c echo.Context) error {
	if id := session.IdentityFrom(c); id != nil {
		return c.Redirect(http.StatusFound, session.LandingPath(id.Role))
	}
	return c.Render(http.StatusOK, "login", &Page{
		Title: "Log in",
		Form:  loginForm{ReturnURL: safeReturnURL(c.QueryParam("returnUrl"))},
	})
}

// Login handles POST /Account/Login.
func (h *AccountHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "login", &Page{Title: "Log in", Error: "Invalid login attempt.", Form: form})
	}
	form.ReturnURL = safeReturnURL(form.ReturnURL)

	if errs := validateForm(form); errs != nil {
		form.Password = ""
		return c.Render(http.StatusBadRequest, "login", &Page{Title: "Log in", Errors: errs, Form: form})
	}

	id, err := h.bridge.SignIn(c, form.Email, form.Password)
	if err != nil {
		form.Password = ""
		status, banner := loginFailure(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("path", c.Path()).Msg("sign in failed")
		}
		return c.Render(status, "login", &Page{Title: "Log in", Error: banner, Form: form})
	}

	if form.ReturnURL != "" {
		return c.Redirect(http.StatusFound, form.ReturnURL)
	}
	return c.Redirect(http.StatusFound, session.LandingPath(id.Role))
}

// Logout handles POST /Account/Logout.
func (h *AccountHandler) Logout(c echo.Context) error {
	if err := h.bridge.SignOut(c); err != nil {
		return err
	}
	addFlash(c, "You have been signed out.")
	return c.Redirect(http.StatusFound, "/")
}

// AccessDenied handles GET /Account/AccessDenied.
func (h *AccountHandler) AccessDenied(c echo.Context) error {
	return c.Render(http.StatusForbidden, "access_denied", &Page{Title: "Access denied"})
}

func loginFailure(err error) (int, string) {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return http.StatusServiceUnavailable, "Sign-in is unavailable right now. Please try again later."
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized && apiErr.Message == "account locked":
		return http.StatusUnauthorized, "This account is temporarily locked after too many failed attempts."
	case apiErr.Status == http.StatusUnauthorized, apiErr.Status == http.StatusBadRequest:
		return http.StatusUnauthorized, "Invalid login attempt."
	}
	return http.StatusServiceUnavailable, "Sign-in is unavailable right now. Please try again later."
}
