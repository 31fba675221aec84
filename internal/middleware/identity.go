package middleware

// identity.go hosts the caller-identification helper shared by the rate
// limiter and the cache key builder.  JWTAuth stores the subject claim in
// the Echo context; unauthenticated requests resolve to "anon" so public
// routes still get a stable key component.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// callerID returns a string form of the authenticated user ID from the
// context, or "anon" when the request carries no identity.
func callerID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		// JWT claims decode JSON numbers as float64.
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return "anon"
}
