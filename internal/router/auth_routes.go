package router

import (
	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/handler"
	"github.com/aryanaichra/project-tracker/internal/middleware"
)

// RegisterAuth wires the authentication surface. Unauthenticated token
// operations live under /v1/auth behind the rate limiter; /v1/me needs a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", rateLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a fresh access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Accepts a refresh_token body; no JWT required.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// Bearer-only logout variant: revokes every session of the caller.
	auth.POST("/logout", a.Logout)
}
