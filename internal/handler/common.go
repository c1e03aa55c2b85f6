// Package handler implements the HTTP endpoints.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Role names carried in the JWT role claim. The claim is coarse: driver
// ownership is always re-verified against the drivers table.
const (
	RoleDriver    = "DRIVER"
	RolePassenger = "PASSENGER"
)

// getUserID extracts the user_id placed in context by the JWT middleware
// and converts it to uint64. JWT numeric claims decode as float64, but the
// value may also arrive as an int or string depending on the issuer.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
