package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/agrienergy/connect/internal/web/apiclient"
	"github.com/agrienergy/connect/internal/web/session"
)

// HomeHandler serves the generic and role landing pages.
type HomeHandler struct {
	bridge     *session.Bridge
	products   ProductAPI
	categories CategoryAPI
	accounts   AccountAPI
}

func NewHomeHandler(bridge *session.Bridge, accounts AccountAPI, products ProductAPI, categories CategoryAPI) *HomeHandler {
	return &HomeHandler{bridge: bridge, accounts: accounts, products: products, categories: categories}
}

// Index handles GET /.
func (h *HomeHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "home", &Page{Title: "AgriEnergy Connect"})
}

type farmerDashboard struct {
	Products   []apiclient.Product
	Categories int
}

// Farmer handles GET /Farmer.
func (h *HomeHandler) Farmer(c echo.Context) error {
	id := session.IdentityFrom(c)
	ctx := c.Request().Context()

	var view farmerDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := h.products.ProductsByFarmer(gctx, id.UserID)
		view.Products = products
		return err
	})
	g.Go(func() error {
		cats, err := h.categories.ListCategories(gctx)
		view.Categories = len(cats)
		return err
	})
	if err := g.Wait(); err != nil {
		return h.bridge.HandleAPIError(c, err)
	}

	return c.Render(http.StatusOK, "farmer_home", &Page{Title: "Farmer dashboard", Data: view})
}

type employeeDashboard struct {
	Farmers    []apiclient.User
	Products   int
	Categories []apiclient.Category
}

// Employee handles GET /Employee.
func (h *HomeHandler) Employee(c echo.Context) error {
	ctx := c.Request().Context()

	var view employeeDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		farmers, err := h.accounts.ListFarmers(gctx)
		view.Farmers = farmers
		return err
	})
	g.Go(func() error {
		products, err := h.products.ListProducts(gctx, apiclient.ProductQuery{})
		view.Products = len(products)
		return err
	})
	g.Go(func() error {
		cats, err := h.categories.ListCategories(gctx)
		view.Categories = cats
		return err
	})
	if err := g.Wait(); err != nil {
		return h.bridge.HandleAPIError(c, err)
	}

	return c.Render(http.StatusOK, "employee_home", &Page{Title: "Employee dashboard", Data: view})
}
