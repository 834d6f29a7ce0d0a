package middleware

// identity.go holds helpers shared across middleware files for reading
// the authenticated identity out of the request context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string for use in
// cache and rate-limit keys. Unauthenticated requests key as "guest".
func currentUserID(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case uint64:
		if v != 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "guest"
}
