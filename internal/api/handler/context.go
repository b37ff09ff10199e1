package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/movielist-api/internal/api/middleware"
)

// ctxUserID extracts the user id injected by the Auth middleware. An empty
// value means the route was mounted without the middleware.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "user id missing from token")
	}
	return userID, nil
}
