package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/middleware"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUser returns the authenticated user id placed by JWTAuth. The
// second return is false when the middleware did not run (programming
// error in route wiring, not a client fault).
func currentUser(c echo.Context) (uint64, bool) {
	id, ok := c.Get(middleware.CtxUserID).(uint64)
	return id, ok && id != 0
}

// paramUint parses a numeric path parameter; 0 means absent or invalid.
func paramUint(c echo.Context, name string) uint64 {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// guardProjectID returns the project id the authorization guard resolved
// for this request.
func guardProjectID(c echo.Context) uint64 {
	id, _ := c.Get(middleware.CtxProjectID).(uint64)
	return id
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func internalError(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
