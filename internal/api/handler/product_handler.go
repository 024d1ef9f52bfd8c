package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/Product.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        categoryId  query     int     false  "Category id"
// @Param        farmerId    query     string  false  "Farmer id (UUID)"
// @Param        from        query     string  false  "Earliest production date (YYYY-MM-DD)"
// @Param        to          query     string  false  "Latest production date (YYYY-MM-DD)"
// @Success      200         {array}   productResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /api/Product [get]
func (h *ProductHandler) List(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}
	return h.list(c, filter)
}

// ByCategory handles GET /api/Product/category/:categoryId.
//
// @Summary      List products in a category
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        categoryId  path      int  true  "Category id"
// @Success      200         {array}   productResponse
// @Failure      400         {object}  errorResponse
// @Router       /api/Product/category/{categoryId} [get]
func (h *ProductHandler) ByCategory(c echo.Context) error {
	id, err := int64Param(c, "categoryId")
	if err != nil {
		return err
	}
	return h.list(c, domain.ProductFilter{CategoryID: id})
}

// ByFarmer handles GET /api/Product/farmer/:farmerId.
//
// @Summary      List products of a farmer
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        farmerId  path      string  true  "Farmer id (UUID)"
// @Success      200       {array}   productResponse
// @Failure      400       {object}  errorResponse
// @Router       /api/Product/farmer/{farmerId} [get]
func (h *ProductHandler) ByFarmer(c echo.Context) error {
	id, err := uuidParam(c, "farmerId")
	if err != nil {
		return err
	}
	return h.list(c, domain.ProductFilter{FarmerID: id})
}

// Get handles GET /api/Product/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  productResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/Product/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Create handles POST /api/Product. The caller becomes the owner.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product fields"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/Product [post]
func (h *ProductHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	in, err := bindProduct(c)
	if err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// Update handles PUT /api/Product/:id.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Product id"
// @Param        body  body      productRequest  true  "Product fields"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/Product/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	in, err := bindProduct(c)
	if err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Delete handles DELETE /api/Product/:id.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  int  true  "Product id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/Product/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) list(c echo.Context, filter domain.ProductFilter) error {
	products, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

func bindProduct(c echo.Context) (ports.ProductInput, error) {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return ports.ProductInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.ProductInput{}, err
	}
	return toProductInput(req)
}

func productFilter(c echo.Context) (domain.ProductFilter, error) {
	var f domain.ProductFilter
	verr := &domain.ValidationError{Fields: map[string]string{}}

	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			verr.Fields["categoryId"] = "categoryId must be a positive integer"
		}
		f.CategoryID = id
	}
	if raw := c.QueryParam("farmerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Fields["farmerId"] = "farmerId must be a UUID"
		} else {
			f.FarmerID = id.String()
		}
	}
	var err error
	if f.From, err = dateQuery(c, "from"); err != nil {
		verr.Fields["from"] = err.Error()
	}
	if f.To, err = dateQuery(c, "to"); err != nil {
		verr.Fields["to"] = err.Error()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		verr.Fields["to"] = "to must not be before from"
	}

	if len(verr.Fields) > 0 {
		return domain.ProductFilter{}, verr
	}
	return f, nil
}

func dateQuery(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return parseDate(name, raw)
}
