package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskdeck/task-system/internal/api/metrics"
	"github.com/taskdeck/task-system/internal/core/ports"
)

// Context keys set by BasicAuth for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// BasicAuth authenticates every request with HTTP Basic credentials resolved
// through the auth service, and injects the authenticated user's identity
// into the echo context. A failed credential check is a plain 401; the
// response never distinguishes an unknown username from a wrong password.
func BasicAuth(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, password, ok := basicCredentials(c.Request().Header.Get("Authorization"))
			if !ok {
				c.Response().Header().Set("WWW-Authenticate", `Basic realm="tasks"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
			}

			user, err := authService.ValidateUserPassword(c.Request().Context(), username, password)
			if err != nil {
				return err
			}
			if user == nil {
				metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
				c.Response().Header().Set("WWW-Authenticate", `Basic realm="tasks"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
			}

			metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
			c.Set(CtxUserID, user.ID)
			c.Set(CtxUsername, user.Username)

			return next(c)
		}
	}
}

// basicCredentials parses an "Authorization: Basic <base64(user:pass)>" header.
func basicCredentials(header string) (username, password string, ok bool) {
	if header == "" {
		return "", "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", false
	}
	credentials := string(decoded)
	i := strings.IndexByte(credentials, ':')
	if i < 0 {
		return "", "", false
	}
	return credentials[:i], credentials[i+1:], true
}
