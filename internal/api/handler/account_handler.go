package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/core/ports"
)

// AccountHandler serves farmer account management.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// ListFarmers handles GET /api/FarmerAccount/farmer/all.
//
// @Summary      List farmers
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/FarmerAccount/farmer/all [get]
func (h *AccountHandler) ListFarmers(c echo.Context) error {
	farmers, err := h.service.ListFarmers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(farmers))
}

// GetFarmer handles GET /api/FarmerAccount/farmer/:id. Farmers may only
// read their own account.
//
// @Summary      Get a farmer
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Farmer id (UUID)"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/FarmerAccount/farmer/{id} [get]
func (h *AccountHandler) GetFarmer(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	farmer, err := h.service.GetFarmer(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(farmer))
}

// UpdateFarmer handles PUT /api/FarmerAccount/farmer/:id.
//
// @Summary      Update a farmer
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Farmer id (UUID)"
// @Param        body  body      updateFarmerRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/FarmerAccount/farmer/{id} [put]
func (h *AccountHandler) UpdateFarmer(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req updateFarmerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	farmer, err := h.service.UpdateFarmer(c.Request().Context(), id, toUpdateFarmerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(farmer))
}

// DeleteFarmer handles DELETE /api/FarmerAccount/farmer/:id. The farmer's
// products are deleted with the account.
//
// @Summary      Delete a farmer
// @Tags         accounts
// @Security     BearerAuth
// @Param        id   path  string  true  "Farmer id (UUID)"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/FarmerAccount/farmer/{id} [delete]
func (h *AccountHandler) DeleteFarmer(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteFarmer(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/FarmerAccount/me.
//
// @Summary      Current principal
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/FarmerAccount/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.service.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
