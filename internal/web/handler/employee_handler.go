package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/web/session"
)

type registerView struct {
	Farmer bool
	Action string
}

// EmployeeHandler serves employee self-service pages.
type EmployeeHandler struct {
	bridge   *session.Bridge
	accounts AccountAPI
}

func NewEmployeeHandler(bridge *session.Bridge, accounts AccountAPI) *EmployeeHandler {
	return &EmployeeHandler{bridge: bridge, accounts: accounts}
}

// RegisterForm handles GET /Employees/Register.
func (h *EmployeeHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register", &Page{
		Title: "Register employee",
		Form:  registerForm{},
		Data:  registerView{Action: "/Employees/Register"},
	})
}

// Register handles POST /Employees/Register.
func (h *EmployeeHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	user, err := h.accounts.RegisterEmployee(c.Request().Context(), form.request())
	if err != nil {
		banner, fields, ok := formFailure(err)
		if !ok {
			return h.bridge.HandleAPIError(c, err)
		}
		form.Password, form.ConfirmPassword = "", ""
		return c.Render(http.StatusBadRequest, "register", &Page{
			Title:  "Register employee",
			Error:  banner,
			Errors: fields,
			Form:   form,
			Data:   registerView{Action: "/Employees/Register"},
		})
	}

	addFlash(c, "Employee "+user.DisplayName()+" registered.")
	return c.Redirect(http.StatusFound, "/Employee")
}
