package middleware // reusable HTTP middleware shared by the routers

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/utils"
)

// Context keys populated by JWTAuth and read by the authorization guard
// and handlers downstream.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxEmail    = "email"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the verified identity claims into the request context. The
// provided secret must match the one used when issuing tokens. An absent
// or malformed Authorization header is a 401, never a 400: the request is
// simply unauthenticated. Expired tokens are logged distinctly from bad
// signatures but both answer with the same generic 401 body.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				if err == utils.ErrTokenExpired {
					log.Printf("auth: expired token on %s %s", c.Request().Method, c.Path())
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxEmail, claims.Email)
			return next(c)
		}
	}
}
