package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGate answers whether a principal is a full administrator from the
// store's current record, never from token claims.
type AdminGate interface {
	RequireAdministrator(ctx context.Context, principalID string) error
}

// RequireAdmin rejects requests whose authenticated principal is not a full
// administrator. Must run after Auth.
func RequireAdmin(gate AdminGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principalID, _ := c.Get("principal_id").(string)
			if principalID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if err := gate.RequireAdministrator(c.Request().Context(), principalID); err != nil {
				// the central error handler maps ErrForbidden to 403
				return err
			}
			return next(c)
		}
	}
}
