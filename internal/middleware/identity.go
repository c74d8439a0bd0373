package middleware

// identity.go holds the user identity helper shared by the rate limit
// and cache middleware.  It reads the claim values JWTAuth stored in
// the context rather than re-parsing the token.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user's id
// for use in per-user keys.  Unauthenticated requests map to "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v == "" {
			return "anon"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}
