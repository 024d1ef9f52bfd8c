package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/agrienergy/connect/internal/web/apiclient"
	"github.com/agrienergy/connect/internal/web/session"
)

// ProductHandler serves the product pages for farmers and employees.
type ProductHandler struct {
	bridge     *session.Bridge
	products   ProductAPI
	categories CategoryAPI
	accounts   AccountAPI
}

func NewProductHandler(bridge *session.Bridge, products ProductAPI, categories CategoryAPI, accounts AccountAPI) *ProductHandler {
	return &ProductHandler{bridge: bridge, products: products, categories: categories, accounts: accounts}
}

type productListView struct {
	Products   []apiclient.Product
	Categories []apiclient.Category
	Farmers    []apiclient.User
	Filter     productFilter
	Mine       bool
}

// List handles GET /Products. Employees can also filter by farmer.
func (h *ProductHandler) List(c echo.Context) error {
	var filter productFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}

	id := session.IdentityFrom(c)
	view := productListView{Filter: filter}
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		products, err := h.products.ListProducts(ctx, filter.query())
		view.Products = products
		return err
	})
	g.Go(func() error {
		cats, err := h.categories.ListCategories(ctx)
		view.Categories = cats
		return err
	})
	if id.IsEmployee() {
		g.Go(func() error {
			farmers, err := h.accounts.ListFarmers(ctx)
			view.Farmers = farmers
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if banner, _, ok := formFailure(err); ok {
			return c.Render(http.StatusBadRequest, "products", &Page{Title: "Products", Error: banner, Data: view})
		}
		return h.bridge.HandleAPIError(c, err)
	}

	return c.Render(http.StatusOK, "products", &Page{Title: "Products", Data: view})
}

// Mine handles GET /Products/Mine.
func (h *ProductHandler) Mine(c echo.Context) error {
	id := session.IdentityFrom(c)
	products, err := h.products.ProductsByFarmer(c.Request().Context(), id.UserID)
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "products", &Page{
		Title: "My products",
		Data:  productListView{Products: products, Mine: true},
	})
}

// Details handles GET /Products/Details/:id.
func (h *ProductHandler) Details(c echo.Context) error {
	pid, err := productID(c)
	if err != nil {
		return err
	}
	product, err := h.products.GetProduct(c.Request().Context(), pid)
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "product_details", &Page{Title: product.Name, Data: product})
}

type productFormView struct {
	Action     string
	Categories []apiclient.Category
	Product    *apiclient.Product
}

// CreateForm handles GET /Products/Create.
func (h *ProductHandler) CreateForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, &Page{Title: "Add product", Form: productForm{}}, productFormView{Action: "/Products/Create"})
}

// Create handles POST /Products/Create.
func (h *ProductHandler) Create(c echo.Context) error {
	var form productForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, &Page{Title: "Add product", Error: msgInvalidForm, Form: form}, productFormView{Action: "/Products/Create"})
	}

	product, err := h.products.CreateProduct(c.Request().Context(), form.request())
	if err != nil {
		banner, fields, ok := formFailure(err)
		if !ok {
			return h.bridge.HandleAPIError(c, err)
		}
		return h.renderForm(c, http.StatusBadRequest, &Page{Title: "Add product", Error: banner, Errors: fields, Form: form}, productFormView{Action: "/Products/Create"})
	}

	addFlash(c, "Product "+product.Name+" added.")
	return c.Redirect(http.StatusFound, "/Products/Mine")
}

// EditForm handles GET /Products/Edit/:id.
func (h *ProductHandler) EditForm(c echo.Context) error {
	pid, err := productID(c)
	if err != nil {
		return err
	}
	product, err := h.products.GetProduct(c.Request().Context(), pid)
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return h.renderForm(c, http.StatusOK,
		&Page{Title: "Edit " + product.Name, Form: productFormFrom(product)},
		productFormView{Action: editPath(pid), Product: product})
}

// Edit handles POST /Products/Edit/:id.
func (h *ProductHandler) Edit(c echo.Context) error {
	pid, err := productID(c)
	if err != nil {
		return err
	}
	var form productForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, &Page{Title: "Edit product", Error: msgInvalidForm, Form: form}, productFormView{Action: editPath(pid)})
	}

	product, err := h.products.UpdateProduct(c.Request().Context(), pid, form.request())
	if err != nil {
		banner, fields, ok := formFailure(err)
		if !ok {
			return h.bridge.HandleAPIError(c, err)
		}
		return h.renderForm(c, http.StatusBadRequest, &Page{Title: "Edit product", Error: banner, Errors: fields, Form: form}, productFormView{Action: editPath(pid)})
	}

	addFlash(c, "Product "+product.Name+" updated.")
	return c.Redirect(http.StatusFound, productsHome(c))
}

// DeleteForm handles GET /Products/Delete/:id.
func (h *ProductHandler) DeleteForm(c echo.Context) error {
	pid, err := productID(c)
	if err != nil {
		return err
	}
	product, err := h.products.GetProduct(c.Request().Context(), pid)
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	return c.Render(http.StatusOK, "product_delete", &Page{Title: "Delete " + product.Name, Data: product})
}

// Delete handles POST /Products/Delete/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	pid, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.products.DeleteProduct(c.Request().Context(), pid); err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	addFlash(c, "Product deleted.")
	return c.Redirect(http.StatusFound, productsHome(c))
}

func (h *ProductHandler) renderForm(c echo.Context, status int, page *Page, view productFormView) error {
	cats, err := h.categories.ListCategories(c.Request().Context())
	if err != nil {
		return h.bridge.HandleAPIError(c, err)
	}
	view.Categories = cats
	page.Data = view
	return c.Render(status, "product_form", page)
}

func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return id, nil
}

func editPath(id int64) string {
	return "/Products/Edit/" + strconv.FormatInt(id, 10)
}

// productsHome is where a product write returns to.
func productsHome(c echo.Context) string {
	if session.IdentityFrom(c).IsFarmer() {
		return "/Products/Mine"
	}
	return "/Products"
}
