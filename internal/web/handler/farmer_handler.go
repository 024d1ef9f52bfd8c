package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/web/apiclient"
	"github.com/agrienergy/connect/internal/web/session"
)

// FarmerHandler serves the employee pages that manage farmer accounts.
type FarmerHandler struct {
	bridge   *session.Bridge
	accounts AccountAPI
	products ProductAPI
}

func NewFarmerHandler(bridge *session.Bridge, accounts AccountAPI, products ProductAPI) *FarmerHandler {
	return &FarmerHandler{bridge: bridge, accounts: accounts, products: products}
}

// List handles GET /Farmers.
func (h *FarmerHandler) List(c echo.Context) error {
	farmers, err := h.accounts.ListFarmers(c.Request().Context())
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "farmers", &Page{Title: "Farmers", Data: farmers})
}

type farmerDetails struct {
	Farmer   *apiclient.User
	Products []apiclient.Product
}

// Details handles GET /Farmers/Details/:id.
func (h *FarmerHandler) Details(c echo.Context) error {
	ctx := c.Request().Context()
	farmer, err := h.accounts.GetFarmer(ctx, c.Param("id"))
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	products, err := h.products.ProductsByFarmer(ctx, farmer.ID)
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "farmer_details", &Page{
		Title: farmer.DisplayName(),
		Data:  farmerDetails{Farmer: farmer, Products: products},
	})
}

// CreateForm handles GET /Farmers/Create.
func (h *FarmerHandler) CreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register", &Page{
		Title: "Register farmer",
		Form:  registerForm{},
		Data:  registerView{Farmer: true, Action: "/Farmers/Create"},
	})
}

// Create handles POST /Farmers/Create.
func (h *FarmerHandler) Create(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	farmer, err := h.accounts.RegisterFarmer(c.Request().Context(), form.request())
	if err != nil {
		return h.registerFailed(c, err, form)
	}

	addFlash(c, "Farmer "+farmer.DisplayName()+" registered.")
	return c.Redirect(http.StatusFound, "/Farmers")
}

func (h *FarmerHandler) registerFailed(c echo.Context, err error, form registerForm) error {
	banner, fields, ok := formFailure(err)
	if !ok {
		return h.bridge.HandleAPIError(c, err)
	}
	form.Password, form.ConfirmPassword = "", ""
	return c.Render(http.StatusBadRequest, "register", &Page{
		Title:  "Register farmer",
		Error:  banner,
		Errors: fields,
		Form:   form,
		Data:   registerView{Farmer: true, Action: "/Farmers/Create"},
	})
}

type farmerEditView struct {
	Farmer *apiclient.User
}

// EditForm handles GET /Farmers/Edit/:id.
func (h *FarmerHandler) EditForm(c echo.Context) error {
	farmer, err := h.accounts.GetFarmer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "farmer_edit", &Page{
		Title: "Edit " + farmer.DisplayName(),
		Form:  farmerFormFrom(farmer),
		Data:  farmerEditView{Farmer: farmer},
	})
}

// Edit handles POST /Farmers/Edit/:id.
func (h *FarmerHandler) Edit(c echo.Context) error {
	id := c.Param("id")
	var form farmerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	ctx := c.Request().Context()
	farmer, err := h.accounts.UpdateFarmer(ctx, id, form.request())
	if err != nil {
		banner, fields, ok := formFailure(err)
		if !ok {
			return h.bridge.HandleAPIError(c, err)
		}
		current, getErr := h.accounts.GetFarmer(ctx, id)
		if getErr != nil {
			return h.bridge.HandleAPIError(c, getErr)
		}
		return c.Render(http.StatusBadRequest, "farmer_edit", &Page{
			Title:  "Edit " + current.DisplayName(),
			Error:  banner,
			Errors: fields,
			Form:   form,
			Data:   farmerEditView{Farmer: current},
		})
	}

	addFlash(c, "Farmer "+farmer.DisplayName()+" updated.")
	return c.Redirect(http.StatusFound, "/Farmers")
}

// DeleteForm handles GET /Farmers/Delete/:id.
func (h *FarmerHandler) DeleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	farmer, err := h.accounts.GetFarmer(ctx, c.Param("id"))
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	products, err := h.products.ProductsByFarmer(ctx, farmer.ID)
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "farmer_delete", &Page{
		Title: "Delete " + farmer.DisplayName(),
		Data:  farmerDetails{Farmer: farmer, Products: products},
	})
}

// Delete handles POST /Farmers/Delete/:id. The API removes the farmer's
// products with the account.
func (h *FarmerHandler) Delete(c echo.Context) error {
	if err := h.accounts.DeleteFarmer(c.Request().Context(), c.Param("id")); err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	addFlash(c, "Farmer deleted.")
	return c.Redirect(http.StatusFound, "/Farmers")
}
