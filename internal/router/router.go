package router

import (
	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/handler"
)

// RegisterRoutes registers routes that require no authentication. Only
// the liveness probe lives here.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
