package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/web/session"
)

// CategoryHandler serves the category list and its create/delete forms.
type CategoryHandler struct {
	bridge     *session.Bridge
	categories CategoryAPI
}

func NewCategoryHandler(bridge *session.Bridge, categories CategoryAPI) *CategoryHandler {
	return &CategoryHandler{bridge: bridge, categories: categories}
}

// List handles GET /Categories.
func (h *CategoryHandler) List(c echo.Context) error {
	return h.render(c, http.StatusOK, &Page{Title: "Categories", Form: categoryForm{}})
}

// Create handles POST /Categories/Create.
func (h *CategoryHandler) Create(c echo.Context) error {
	var form categoryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	cat, err := h.categories.CreateCategory(c.Request().Context(), form.Name)
	if err != nil {
		banner, fields, ok := formFailure(err)
		if !ok {
			return h.bridge.HandleAPIError(c, err)
		}
		return h.render(c, http.StatusBadRequest, &Page{Title: "Categories", Error: banner, Errors: fields, Form: form})
	}

	addFlash(c, "Category "+cat.Name+" created.")
	return c.Redirect(http.StatusFound, "/Categories")
}

// Delete handles POST /Categories/Delete/:id. Categories still holding
// products are refused by the API and the reason is shown on the list.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	if err := h.categories.DeleteCategory(c.Request().Context(), id); err != nil {
		banner, _, ok := formFailure(err)
		if !ok {
			return h.bridge.HandleAPIError(c, err)
		}
		return h.render(c, http.StatusBadRequest, &Page{Title: "Categories", Error: banner, Form: categoryForm{}})
	}

	addFlash(c, "Category deleted.")
	return c.Redirect(http.StatusFound, "/Categories")
}

func (h *CategoryHandler) render(c echo.Context, status int, page *Page) error {
	cats, err := h.categories.ListCategories(c.Request().Context())
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	page.Data = cats
	return c.Render(status, "categories", page)
}
