package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskdeck/task-system/internal/api/middleware"
)

// authenticatedUserID extracts the user id injected by the BasicAuth
// middleware. A missing id means the middleware did not run on this route;
// task operations must never proceed without an owner scope, so the request
// is rejected outright.
func authenticatedUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}
