package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spoonhq/accounts-api/internal/core/ports"
)

// OperatorHandler serves the administrator-only operator lifecycle endpoints.
// Role enforcement lives in the service's gate; the route group additionally
// carries the RequireAdmin middleware for an early reject.
type OperatorHandler struct {
	service ports.OperatorService
}

func NewOperatorHandler(service ports.OperatorService) *OperatorHandler {
	return &OperatorHandler{service: service}
}

// AddOperator creates a restricted backend operator and mails the reset link.
//
// @Summary      Add a backend operator
// @Tags         operators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addOperatorRequest  true  "Operator name and email"
// @Success      201   {object}  envelope
// @Failure      403   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /admin/add-new-user [post]
func (h *OperatorHandler) AddOperator(c echo.Context) error {
	actorID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	var req addOperatorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.AddBackendOperator(c.Request().Context(), actorID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ok(account, "backend operator added, reset mail sent to "+req.Email))
}

// EditOperator updates a backend operator's details.
func (h *OperatorHandler) EditOperator(c echo.Context) error {
	actorID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	var req editOperatorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.EditBackendOperator(c.Request().Context(), actorID, ports.EditOperatorInput{
		OperatorID:  req.ID,
		UserName:    req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(nil, "operator details updated successfully"))
}

// DeleteOperator removes a backend operator.
//
// @Summary      Delete a backend operator
// @Tags         operators
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Operator id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /admin/delete-user/{id} [delete]
func (h *OperatorHandler) DeleteOperator(c echo.Context) error {
	actorID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteBackendOperator(c.Request().Context(), actorID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(nil, "operator deleted successfully"))
}

// ListOperators returns every operator account, hashes redacted.
func (h *OperatorHandler) ListOperators(c echo.Context) error {
	operators, err := h.service.ListOperators(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(operators, "all operators"))
}

// SetAvailability flips the restaurant-wide ordering toggle.
func (h *OperatorHandler) SetAvailability(c echo.Context) error {
	actorID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}
	open := c.Param("status") == "true"
	if err := h.service.SetAvailability(c.Request().Context(), actorID, open); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(availabilityPayload{Open: open}, "availability updated successfully"))
}

// GetAvailability reports the current toggle state; no auth required.
func (h *OperatorHandler) GetAvailability(c echo.Context) error {
	open, err := h.service.GetAvailability(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(availabilityPayload{Open: open}, "availability status"))
}
