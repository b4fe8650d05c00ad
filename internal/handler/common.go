package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user's id placed in the context by
// the JWTAuth middleware.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	id, ok := v.(uint64)
	if !ok || id == 0 {
		return 0, errors.New("missing user id in context")
	}
	return id, nil
}
