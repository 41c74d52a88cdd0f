package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxPrincipalID extracts the principal id injected by the Auth middleware.
// Its presence proves the middleware ran; an empty id on a protected route
// means the token cleared signature checks but carries no usable identity —
// reject with 401.
func ctxPrincipalID(c echo.Context) (string, error) {
	id, _ := c.Get("principal_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
